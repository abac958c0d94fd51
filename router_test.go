package distribuidor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	distribuidor "github.com/BrunoSalvador97/zaia-distribuidor"
	"github.com/BrunoSalvador97/zaia-distribuidor/policy"
	distest "github.com/BrunoSalvador97/zaia-distribuidor/testing"
	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// captureQueue records the assignments handed off for notification.
type captureQueue struct {
	mu      sync.Mutex
	results []*types.AssignmentResult
	leads   []*types.Lead
	err     error
}

func (c *captureQueue) Enqueue(result *types.AssignmentResult, lead *types.Lead) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	c.results = append(c.results, result)
	c.leads = append(c.leads, lead)

	return nil
}

func newTestRouter(t *testing.T, store types.Store, opts ...distribuidor.Option) *distribuidor.Router {
	t.Helper()

	cfg := distribuidor.Config{
		MaxAssignAttempts: 5,
		RetryBackoff:      time.Millisecond,
	}
	router, err := distribuidor.NewRouter(&cfg, store, policy.NewRoundRobin(), opts...)
	require.NoError(t, err)

	return router
}

func seedRoster(store *distest.MemStore) {
	store.SeedOwners(
		types.Owner{ID: 1, DisplayName: "Alice", ContactHandle: "+551101", RoutingTag: "alice", Active: true},
		types.Owner{ID: 2, DisplayName: "Bob", ContactHandle: "+551102", RoutingTag: "bob", Active: true},
		types.Owner{ID: 3, DisplayName: "Carol", ContactHandle: "+551103", RoutingTag: "carol", Active: true},
	)
}

func TestNewRouterValidation(t *testing.T) {
	store := distest.NewMemStore()
	cfg := distribuidor.DefaultConfig()

	_, err := distribuidor.NewRouter(nil, store, policy.NewRoundRobin())
	require.ErrorIs(t, err, distribuidor.ErrInvalidConfig)

	_, err = distribuidor.NewRouter(&cfg, nil, policy.NewRoundRobin())
	require.ErrorIs(t, err, distribuidor.ErrStoreRequired)

	_, err = distribuidor.NewRouter(&cfg, store, nil)
	require.ErrorIs(t, err, distribuidor.ErrPolicyRequired)

	bad := distribuidor.Config{PendingGrace: time.Second, OperationTimeout: time.Minute}
	_, err = distribuidor.NewRouter(&bad, store, policy.NewRoundRobin())
	require.ErrorIs(t, err, distribuidor.ErrInvalidConfig)
}

func TestAssignRotation(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newTestRouter(t, store)
	ctx := context.Background()

	// First contact goes to the first owner and moves the cursor.
	r1, err := router.Assign(ctx, "+1000", map[string]string{types.AttrName: "One"})
	require.NoError(t, err)
	require.True(t, r1.IsNew)
	require.Equal(t, types.OwnerID(1), r1.OwnerID)
	require.Equal(t, "Alice", r1.OwnerDisplayName)
	require.Equal(t, uint64(1), store.CursorIndex())

	// The same contact again is sticky: same owner, same lead, no cursor
	// movement.
	r1again, err := router.Assign(ctx, "+1000", nil)
	require.NoError(t, err)
	require.False(t, r1again.IsNew)
	require.Equal(t, r1.LeadID, r1again.LeadID)
	require.Equal(t, types.OwnerID(1), r1again.OwnerID)
	require.Equal(t, uint64(1), store.CursorIndex())

	// New contacts keep rotating in roster order.
	r2, err := router.Assign(ctx, "+2000", nil)
	require.NoError(t, err)
	require.Equal(t, types.OwnerID(2), r2.OwnerID)

	r3, err := router.Assign(ctx, "+3000", nil)
	require.NoError(t, err)
	require.Equal(t, types.OwnerID(3), r3.OwnerID)
	require.Equal(t, uint64(0), store.CursorIndex())

	// The rotation wraps back to the first owner.
	r4, err := router.Assign(ctx, "+4000", nil)
	require.NoError(t, err)
	require.Equal(t, types.OwnerID(1), r4.OwnerID)
}

func TestAssignInvalidInput(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newTestRouter(t, store)

	for _, contactID := range []string{"", "   "} {
		_, err := router.Assign(context.Background(), contactID, nil)
		require.ErrorIs(t, err, distribuidor.ErrInvalidInput)
	}
}

func TestAssignNoActiveOwners(t *testing.T) {
	store := distest.NewMemStore()
	router := newTestRouter(t, store)
	ctx := context.Background()

	_, err := router.Assign(ctx, "+1000", nil)
	require.ErrorIs(t, err, distribuidor.ErrNoActiveOwners)

	// The failed assignment left no trace: the contact is still unknown
	// and the cursor never moved.
	_, err = store.Resolve(ctx, "+1000")
	require.ErrorIs(t, err, types.ErrLeadNotFound)
	require.Equal(t, uint64(0), store.CursorIndex())

	// Activating an owner makes the same contact assignable again.
	store.SeedOwners(types.Owner{ID: 1, DisplayName: "Alice", Active: true})
	result, err := router.Assign(ctx, "+1000", nil)
	require.NoError(t, err)
	require.True(t, result.IsNew)
}

func TestAssignDeactivatedOwnerKeepsLeads(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newTestRouter(t, store)
	ctx := context.Background()

	r1, err := router.Assign(ctx, "+1000", nil)
	require.NoError(t, err)
	require.Equal(t, types.OwnerID(1), r1.OwnerID)

	// Deactivation removes the owner from rotation but keeps existing
	// bindings sticky.
	require.NoError(t, store.SetOwnerActive(ctx, 1, false))

	r1again, err := router.Assign(ctx, "+1000", nil)
	require.NoError(t, err)
	require.False(t, r1again.IsNew)
	require.Equal(t, types.OwnerID(1), r1again.OwnerID)

	// New contacts rotate over the remaining roster only.
	for _, contactID := range []string{"+2000", "+3000", "+4000", "+5000"} {
		r, err := router.Assign(ctx, contactID, nil)
		require.NoError(t, err)
		require.NotEqual(t, types.OwnerID(1), r.OwnerID)
	}
}

func TestAssignRecordsAttributes(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newTestRouter(t, store)
	ctx := context.Background()

	attrs := map[string]string{types.AttrName: "Maria", types.AttrCompany: "Acme"}
	result, err := router.Assign(ctx, "+1000", attrs)
	require.NoError(t, err)

	// Mutating the caller's map afterwards must not leak into the lead.
	attrs[types.AttrName] = "changed"

	asn, err := store.Resolve(ctx, "+1000")
	require.NoError(t, err)
	require.Equal(t, result.LeadID, asn.Lead.ID)
	require.Equal(t, "Maria", asn.Lead.Attributes[types.AttrName])
	require.Equal(t, "Acme", asn.Lead.Attributes[types.AttrCompany])
	require.False(t, asn.Lead.CreatedAt.IsZero())
}

func TestAssignImportedMarksLead(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	router := newTestRouter(t, store)
	ctx := context.Background()

	result, err := router.AssignImported(ctx, "+1000", nil)
	require.NoError(t, err)
	require.True(t, result.IsNew)

	asn, err := store.Resolve(ctx, "+1000")
	require.NoError(t, err)
	require.True(t, asn.Lead.Imported)

	// A later webhook for the imported contact is a sticky return.
	again, err := router.Assign(ctx, "+1000", nil)
	require.NoError(t, err)
	require.False(t, again.IsNew)
}

func TestAssignHandsOffToDispatchQueue(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	queue := &captureQueue{}
	router := newTestRouter(t, store, distribuidor.WithDispatchQueue(queue))
	ctx := context.Background()

	r1, err := router.Assign(ctx, "+1000", map[string]string{types.AttrName: "Maria"})
	require.NoError(t, err)

	// Sticky returns are handed off too, so the owner hears about the
	// returning contact.
	_, err = router.Assign(ctx, "+1000", nil)
	require.NoError(t, err)

	require.Len(t, queue.results, 2)
	require.True(t, queue.results[0].IsNew)
	require.False(t, queue.results[1].IsNew)
	require.Equal(t, r1.LeadID, queue.leads[0].ID)
	require.Equal(t, "+1000", queue.leads[0].ContactID)
	require.Equal(t, "Maria", queue.leads[0].Attributes[types.AttrName])
}

func TestAssignSurvivesEnqueueFailure(t *testing.T) {
	store := distest.NewMemStore()
	seedRoster(store)
	queue := &captureQueue{err: types.ErrQueueFull}
	router := newTestRouter(t, store, distribuidor.WithDispatchQueue(queue))

	result, err := router.Assign(context.Background(), "+1000", nil)
	require.NoError(t, err)
	require.True(t, result.IsNew)
}
