package policy

import (
	"context"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// RoundRobin implements fixed modulo rotation over the ordered roster.
//
// This is the default policy: the owner chosen for the n-th new lead is
// roster[cursor mod len(roster)], and the cursor advances to
// (cursor + 1) mod len(roster). It is O(1) per decision and requires no
// storage access, unlike least-loaded counting.
type RoundRobin struct{}

var _ types.AssignmentPolicy = (*RoundRobin)(nil)

// NewRoundRobin creates a new round-robin policy.
//
// Returns:
//   - *RoundRobin: Initialized round-robin policy
//
// Example:
//
//	pol := policy.NewRoundRobin()
//	router, err := distribuidor.NewRouter(&cfg, store, pol)
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// SelectOwner picks roster[cursor mod len(roster)] and advances the cursor.
//
// Parameters:
//   - ctx: Unused; the policy is pure
//   - contactID: Unused; rotation ignores the contact identity
//   - roster: Active owners ordered by ID ascending
//   - cursor: Current rotation position
//
// Returns:
//   - types.Owner: The chosen owner
//   - uint64: (cursor + 1) mod len(roster)
//   - error: types.ErrNoActiveOwners if the roster is empty
func (rr *RoundRobin) SelectOwner(_ context.Context, _ string, roster []types.Owner, cursor uint64) (types.Owner, uint64, error) {
	if len(roster) == 0 {
		return types.Owner{}, 0, types.ErrNoActiveOwners
	}

	n := uint64(len(roster))
	chosen := roster[cursor%n]
	next := (cursor + 1) % n

	return chosen, next, nil
}
