package policy

import (
	"context"
	"fmt"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// LeastLoaded selects the active owner with the fewest committed leads.
//
// It consults a types.LeadCounter (typically the store) on every decision,
// which may be a full scan on stores without native counters. Ties are broken
// by the lowest owner ID, so the selection stays deterministic.
//
// The returned next cursor is cursor + 1: the cursor is not a rotation
// position for this policy, but it still serves as the serialization point
// that prevents two concurrent decisions from acting on the same load
// observation.
type LeastLoaded struct {
	counter types.LeadCounter
}

var _ types.AssignmentPolicy = (*LeastLoaded)(nil)

// NewLeastLoaded creates a new least-loaded policy.
//
// Parameters:
//   - counter: Source of per-owner committed lead counts
//
// Returns:
//   - *LeastLoaded: Initialized least-loaded policy
//
// Example:
//
//	pol := policy.NewLeastLoaded(store)
//	router, err := distribuidor.NewRouter(&cfg, store, pol)
func NewLeastLoaded(counter types.LeadCounter) *LeastLoaded {
	return &LeastLoaded{counter: counter}
}

// SelectOwner picks the roster owner with the fewest committed leads.
//
// Returns:
//   - types.Owner: The least-loaded owner (ties go to the lowest ID)
//   - uint64: cursor + 1
//   - error: types.ErrNoActiveOwners on an empty roster, or the counter's
//     error
func (ll *LeastLoaded) SelectOwner(ctx context.Context, _ string, roster []types.Owner, cursor uint64) (types.Owner, uint64, error) {
	if len(roster) == 0 {
		return types.Owner{}, 0, types.ErrNoActiveOwners
	}

	counts, err := ll.counter.LeadCounts(ctx)
	if err != nil {
		return types.Owner{}, 0, fmt.Errorf("failed to load lead counts: %w", err)
	}

	// Roster is ordered by ID ascending, so a strict < comparison keeps
	// the lowest ID on ties.
	chosen := roster[0]
	best := counts[chosen.ID]
	for _, o := range roster[1:] {
		if c := counts[o.ID]; c < best {
			chosen = o
			best = c
		}
	}

	return chosen, cursor + 1, nil
}
