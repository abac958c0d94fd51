package types

import "context"

// AssignmentPolicy selects the owner for a new lead.
//
// Policies implement different selection algorithms:
//   - RoundRobin: fixed modulo rotation over the ordered roster (default)
//   - LeastLoaded: owner with the fewest committed leads
//   - HashAffinity: stable hash of the contact identity
//
// Policy implementations should:
//   - Be deterministic (same input -> same output)
//   - Signal ErrNoActiveOwners on an empty roster
//   - Run quickly (called on the hot path, inside the commit retry loop)
//   - Keep no mutable state of their own; the cursor carries the state
type AssignmentPolicy interface {
	// SelectOwner picks the owner for contactID from the active roster.
	//
	// The roster is ordered by owner ID ascending and restricted to active
	// owners. The cursor is the rotation position observed in the same
	// atomic attempt; the returned next value is committed through the
	// cursor compare-and-swap before the lead itself, so concurrent
	// assignments for different contacts can never both act on the same
	// observation.
	//
	// Parameters:
	//   - ctx: Context for policies that consult external state
	//   - contactID: Normalized contact identity of the new lead
	//   - roster: Active owners, ordered by ID ascending, len >= 1
	//   - cursor: Rotation position observed in this attempt
	//
	// Returns:
	//   - Owner: The chosen owner
	//   - uint64: The next cursor value to commit
	//   - error: ErrNoActiveOwners if the roster is empty
	SelectOwner(ctx context.Context, contactID string, roster []Owner, cursor uint64) (Owner, uint64, error)
}

// LeadCounter reports the number of committed leads per owner.
//
// Consumed by the least-loaded policy; implemented by stores.
type LeadCounter interface {
	// LeadCounts returns the committed lead count per owner ID. Owners
	// with no leads may be absent from the map.
	LeadCounts(ctx context.Context) (map[OwnerID]int, error)
}
