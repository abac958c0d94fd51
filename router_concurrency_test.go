package distribuidor_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	distribuidor "github.com/BrunoSalvador97/zaia-distribuidor"
	"github.com/BrunoSalvador97/zaia-distribuidor/policy"
	distest "github.com/BrunoSalvador97/zaia-distribuidor/testing"
	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

func newContentionRouter(t *testing.T, store types.Store) *distribuidor.Router {
	t.Helper()

	// Generous retry budget: these tests provoke far more contention than
	// production traffic would.
	cfg := distribuidor.Config{
		MaxAssignAttempts: 10,
		RetryBackoff:      time.Millisecond,
	}
	router, err := distribuidor.NewRouter(&cfg, store, policy.NewRoundRobin())
	require.NoError(t, err)

	return router
}

func TestAssignConcurrentSameContact(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newContentionRouter(t, store)

	const callers = 16

	var wg sync.WaitGroup
	results := make([]*types.AssignmentResult, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := range callers {
		go func() {
			defer wg.Done()
			results[i], errs[i] = router.Assign(context.Background(), "+1000", nil)
		}()
	}
	wg.Wait()

	// Every caller gets the same binding; exactly one created it.
	created := 0
	for i := range callers {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].LeadID, results[i].LeadID)
		require.Equal(t, results[0].OwnerID, results[i].OwnerID)
		if results[i].IsNew {
			created++
		}
	}
	require.Equal(t, 1, created)

	// The cursor advanced exactly once for the single new contact.
	require.Equal(t, uint64(1), store.CursorIndex())
}

func TestAssignConcurrentDistinctContacts(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newContentionRouter(t, store)

	const contacts = 30

	var wg sync.WaitGroup
	errs := make([]error, contacts)

	wg.Add(contacts)
	for i := range contacts {
		go func() {
			defer wg.Done()
			contactID := fmt.Sprintf("+55119%05d", i)
			_, errs[i] = router.Assign(context.Background(), contactID, nil)
		}()
	}
	wg.Wait()

	for i := range contacts {
		require.NoError(t, errs[i])
	}

	// Every cursor advance commits exactly one lead, so the rotation is
	// exactly fair regardless of interleaving.
	counts, err := store.LeadCounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[types.OwnerID]int{1: 10, 2: 10, 3: 10}, counts)

	require.Equal(t, uint64(0), store.CursorIndex())
}

func TestAssignConcurrentMixedTraffic(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newContentionRouter(t, store)
	ctx := context.Background()

	// Pre-commit one contact, then race sticky returns against new
	// assignments.
	first, err := router.Assign(ctx, "+77777", nil)
	require.NoError(t, err)

	const callers = 20

	var wg sync.WaitGroup
	errs := make([]error, callers)
	results := make([]*types.AssignmentResult, callers)

	wg.Add(callers)
	for i := range callers {
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				results[i], errs[i] = router.Assign(ctx, "+77777", nil)
			} else {
				results[i], errs[i] = router.Assign(ctx, fmt.Sprintf("+8888%02d", i), nil)
			}
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		if i%2 == 0 {
			require.False(t, results[i].IsNew)
			require.Equal(t, first.OwnerID, results[i].OwnerID)
		} else {
			require.True(t, results[i].IsNew)
		}
	}

	// 1 pre-committed + 10 new contacts moved the cursor 11 times.
	require.Equal(t, uint64(11%3), store.CursorIndex())
}
