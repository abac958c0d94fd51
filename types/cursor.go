package types

import "time"

// Cursor is the singleton rotation pointer determining the next owner for a
// new lead.
//
// The owner chosen for the n-th new lead is roster[Index mod len(roster)];
// after a successful assignment the cursor advances. The cursor is
// process-wide shared state with exactly one logical writer sequence:
// concurrent writers serialize through the store's compare-and-swap, keyed on
// Revision. A cursor update must never be computed from a value read outside
// the same atomic attempt.
type Cursor struct {
	// Index is the current rotation position. Always >= 0.
	Index uint64 `json:"index"`

	// Revision is the store revision observed when the cursor was read.
	// It is the compare-and-swap token for AdvanceCursor and is not
	// persisted as part of the cursor value.
	Revision uint64 `json:"-"`

	// UpdatedAt is when the cursor was last advanced.
	UpdatedAt time.Time `json:"updated_at"`
}

// Reservation is an in-flight claim on a contact during a new-lead
// assignment.
//
// Creating the reservation is the storage-level uniqueness constraint on
// ContactID: exactly one concurrent assignment for the same new contact can
// hold it. The reservation is finalized by Commit or released by Abort.
type Reservation struct {
	// ContactID is the contact the reservation claims.
	ContactID string `json:"contact_id"`

	// Revision is the store revision of the reservation entry, used to
	// finalize it atomically.
	Revision uint64 `json:"-"`

	// CreatedAt is when the reservation was taken. Stale reservations
	// (crashed writers) are reclaimed after a grace period.
	CreatedAt time.Time `json:"created_at"`
}
