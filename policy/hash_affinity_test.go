package policy

import (
	"context"
	"fmt"
	"testing"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
	"github.com/stretchr/testify/require"
)

func TestHashAffinity_SelectOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("same contact always maps to the same owner", func(t *testing.T) {
		pol := NewHashAffinity(0)
		roster := testRoster(1, 2, 3, 4)

		first, _, err := pol.SelectOwner(ctx, "+5511999990000", roster, 0)
		require.NoError(t, err)

		for cursor := uint64(1); cursor < 10; cursor++ {
			chosen, next, err := pol.SelectOwner(ctx, "+5511999990000", roster, cursor)
			require.NoError(t, err)
			require.Equal(t, first.ID, chosen.ID)
			require.Equal(t, cursor+1, next)
		}
	})

	t.Run("spreads contacts across the roster", func(t *testing.T) {
		pol := NewHashAffinity(0)
		roster := testRoster(1, 2, 3, 4)

		seen := make(map[types.OwnerID]int)
		for i := 0; i < 200; i++ {
			chosen, _, err := pol.SelectOwner(ctx, fmt.Sprintf("+55119999%05d", i), roster, 0)
			require.NoError(t, err)
			seen[chosen.ID]++
		}

		require.Len(t, seen, len(roster), "every owner receives some contacts")
	})

	t.Run("seed changes the mapping", func(t *testing.T) {
		roster := testRoster(1, 2, 3, 4, 5, 6, 7, 8)

		unseeded := NewHashAffinity(0)
		seeded := NewHashAffinity(0xfeed)

		differs := false
		for i := 0; i < 32 && !differs; i++ {
			contact := fmt.Sprintf("+100%02d", i)
			a, _, err := unseeded.SelectOwner(ctx, contact, roster, 0)
			require.NoError(t, err)
			b, _, err := seeded.SelectOwner(ctx, contact, roster, 0)
			require.NoError(t, err)
			differs = a.ID != b.ID
		}

		require.True(t, differs, "seeded mapping should differ for at least one contact")
	})

	t.Run("returns ErrNoActiveOwners for empty roster", func(t *testing.T) {
		pol := NewHashAffinity(0)

		_, _, err := pol.SelectOwner(ctx, "+1000", nil, 0)

		require.ErrorIs(t, err, types.ErrNoActiveOwners)
	})
}
