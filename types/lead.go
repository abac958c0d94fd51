package types

import "time"

// Well-known lead attribute keys.
//
// Attributes are free-form key/value pairs normalized upstream from the
// inbound webhook payload. These keys are the ones the stock normalizer
// produces and the reporter and notification texts understand.
const (
	AttrName      = "name"
	AttrCompany   = "company"
	AttrCity      = "city"
	AttrMediaType = "media_type"
	AttrPeriod    = "period"
	AttrBudget    = "budget"
)

// Lead is a persisted record binding a contact to exactly one owner.
//
// Invariants:
//   - ContactID is unique across all leads: at most one lead per contact,
//     ever, enforced as a storage-level constraint.
//   - OwnerID is immutable once set. A lead is never deleted or re-assigned
//     by the routing core.
type Lead struct {
	// ID is the unique lead identifier (UUID).
	ID string `json:"id"`

	// ContactID is the normalized contact identity (e.g. canonical phone
	// number) this lead is about.
	ContactID string `json:"contact_id"`

	// OwnerID is the owner this lead was committed to.
	OwnerID OwnerID `json:"owner_id"`

	// Attributes holds free-form lead metadata (company, city, budget, ...).
	Attributes map[string]string `json:"attributes,omitempty"`

	// Imported marks leads created by the bulk contact importer rather
	// than an inbound webhook event.
	Imported bool `json:"imported,omitempty"`

	// CreatedAt is the commit time of the assignment.
	CreatedAt time.Time `json:"created_at"`
}

// MessageOrigin identifies who produced a message record.
type MessageOrigin string

// Message origins.
const (
	OriginContact MessageOrigin = "contact"
	OriginOwner   MessageOrigin = "owner"
)

// MessageRecord is an append-only log entry tied to a lead.
//
// Message records are not involved in routing invariants; they are consumed
// only by reporting and the notification summary texts.
type MessageRecord struct {
	// LeadID is the lead this message belongs to.
	LeadID string `json:"lead_id"`

	// Text is the raw message text.
	Text string `json:"text"`

	// Origin tells whether the contact or the owner produced the message.
	Origin MessageOrigin `json:"origin"`

	// Timestamp is when the message was recorded.
	Timestamp time.Time `json:"timestamp"`
}
