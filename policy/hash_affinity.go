package policy

import (
	"context"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
	"github.com/zeebo/xxh3"
)

// HashAffinity maps each contact to a roster slot by a stable hash of the
// contact identity.
//
// The same contact always maps to the same owner for a given roster, even
// before any lead exists. Note that roster changes reshuffle the mapping;
// committed leads are unaffected because ownership is bound at commit time
// and resolved by lookup, not recomputed.
type HashAffinity struct {
	seed uint64
}

var _ types.AssignmentPolicy = (*HashAffinity)(nil)

// NewHashAffinity creates a new hash-affinity policy.
//
// Parameters:
//   - seed: Hash seed; use 0 for the unseeded default. A non-zero seed
//     decorrelates slot mapping between independent deployments.
//
// Returns:
//   - *HashAffinity: Initialized hash-affinity policy
func NewHashAffinity(seed uint64) *HashAffinity {
	return &HashAffinity{seed: seed}
}

// SelectOwner picks roster[xxh3(contactID) mod len(roster)].
//
// Returns:
//   - types.Owner: The owner the contact hashes to
//   - uint64: cursor + 1 (logical assignment sequence; this policy does not
//     rotate, but the cursor remains the concurrency serialization point)
//   - error: types.ErrNoActiveOwners if the roster is empty
func (ha *HashAffinity) SelectOwner(_ context.Context, contactID string, roster []types.Owner, cursor uint64) (types.Owner, uint64, error) {
	if len(roster) == 0 {
		return types.Owner{}, 0, types.ErrNoActiveOwners
	}

	var h uint64
	if ha.seed != 0 {
		h = xxh3.HashStringSeed(contactID, ha.seed)
	} else {
		h = xxh3.HashString(contactID)
	}

	chosen := roster[h%uint64(len(roster))]

	return chosen, cursor + 1, nil
}
