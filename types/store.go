package types

import (
	"context"
	"time"
)

// ContactResolver answers whether a contact already owns an assignment.
type ContactResolver interface {
	// Resolve looks up the committed lead for contactID.
	//
	// Read-only; the only fault it raises besides the sentinel conditions
	// below is a store-unavailable error.
	//
	// Returns:
	//   - *Assignment: The lead and its denormalized owner
	//   - error: ErrLeadNotFound if the contact is unknown,
	//     ErrContactPending if another assignment for this contact is
	//     in flight, or a wrapped ErrStoreUnavailable
	Resolve(ctx context.Context, contactID string) (*Assignment, error)
}

// RosterSource provides read-only access to the owner roster.
type RosterSource interface {
	// ActiveOwners returns the active owners ordered by ID ascending.
	ActiveOwners(ctx context.Context) ([]Owner, error)

	// Owner returns the owner with the given ID, active or not.
	// Returns ErrOwnerNotFound if no such owner exists.
	Owner(ctx context.Context, id OwnerID) (*Owner, error)
}

// CursorStore provides the rotation cursor and its compare-and-swap advance.
type CursorStore interface {
	// Cursor returns the current rotation cursor together with the store
	// revision to be used as the compare-and-swap token. The cursor is
	// created with index 0 on first read.
	Cursor(ctx context.Context) (*Cursor, error)

	// AdvanceCursor commits the next cursor value, conditional on the
	// observed cursor's revision being current.
	//
	// Returns ErrCursorConflict when another writer advanced the cursor
	// since observed was read; the caller must re-read and re-select.
	AdvanceCursor(ctx context.Context, observed *Cursor, next uint64) error
}

// LeadWriter creates leads under the unique-contact constraint.
//
// The write path is reserve -> commit: Reserve atomically claims the contact
// (the uniqueness constraint), Commit finalizes the lead, Abort releases a
// claim whose assignment could not complete.
type LeadWriter interface {
	// Reserve claims contactID for a new-lead assignment.
	//
	// Returns ErrDuplicateContact if a committed lead already exists,
	// ErrContactPending if another assignment currently holds the claim.
	Reserve(ctx context.Context, contactID string) (*Reservation, error)

	// Commit finalizes the reservation with the committed lead.
	Commit(ctx context.Context, res *Reservation, lead *Lead) error

	// Abort releases the reservation without committing a lead.
	Abort(ctx context.Context, res *Reservation) error
}

// MessageLog is the append-only per-lead message history.
type MessageLog interface {
	// AppendMessages appends message records to the lead's history.
	AppendMessages(ctx context.Context, leadID string, msgs []MessageRecord) error

	// Messages returns the lead's message history in append order.
	Messages(ctx context.Context, leadID string) ([]MessageRecord, error)
}

// LeadFilter restricts reporting queries. Zero values mean "no restriction".
type LeadFilter struct {
	// OwnerID restricts to leads owned by this owner.
	OwnerID OwnerID

	// Tag restricts to leads whose owner's routing tag contains this
	// substring (case-insensitive).
	Tag string

	// From restricts to leads created at or after this time.
	From time.Time

	// Until restricts to leads created before this time.
	Until time.Time
}

// LeadDirectory provides the read paths consumed by reporting and the
// least-loaded policy.
type LeadDirectory interface {
	LeadCounter

	// ListLeads returns lead/owner joins matching the filter, newest
	// first.
	ListLeads(ctx context.Context, f LeadFilter) ([]Assignment, error)
}

// RosterAdmin mutates the owner roster.
//
// Administration is external to the routing core; changes take effect for
// subsequent decisions only.
type RosterAdmin interface {
	// PutOwner creates or replaces an owner record.
	PutOwner(ctx context.Context, o Owner) error

	// SetOwnerActive toggles an owner's participation in rotation.
	// Returns ErrOwnerNotFound if no such owner exists.
	SetOwnerActive(ctx context.Context, id OwnerID, active bool) error
}

// Store is the full durable-state contract the router operates on.
//
// Implementations must uphold the consistency contract: Reserve enforces the
// unique-contact constraint atomically, and AdvanceCursor is an optimistic
// compare-and-swap, so that the reserve/advance/commit sequence combined with
// a bounded retry loop behaves as one atomic assignment per contact.
type Store interface {
	ContactResolver
	RosterSource
	CursorStore
	LeadWriter
	MessageLog
	LeadDirectory
	RosterAdmin
}
