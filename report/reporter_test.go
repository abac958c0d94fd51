package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	distest "github.com/BrunoSalvador97/zaia-distribuidor/testing"
	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

func seedLeads(t *testing.T) *distest.MemStore {
	t.Helper()

	store := distest.NewMemStore()
	store.SeedOwners(
		types.Owner{ID: 1, DisplayName: "Alice", RoutingTag: "alice", Active: true},
		types.Owner{ID: 2, DisplayName: "Bob", RoutingTag: "bob", Active: true},
	)

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	commit := func(i int, owner types.OwnerID, imported bool) {
		contactID := fmt.Sprintf("+55119999%04d", i)
		res, err := store.Reserve(ctx, contactID)
		require.NoError(t, err)
		require.NoError(t, store.Commit(ctx, res, &types.Lead{
			ID:        fmt.Sprintf("lead-%d", i),
			ContactID: contactID,
			OwnerID:   owner,
			Attributes: map[string]string{
				types.AttrName: fmt.Sprintf("Contact %d", i),
			},
			Imported:  imported,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	commit(1, 1, false)
	commit(2, 2, false)
	commit(3, 1, true)

	return store
}

func TestReporterBuild(t *testing.T) {
	store := seedLeads(t)
	reporter := NewReporter(store)

	rep, err := reporter.Build(context.Background(), types.LeadFilter{})
	require.NoError(t, err)

	require.Equal(t, 3, rep.Total)
	require.Equal(t, map[string]int{"Alice": 2, "Bob": 1}, rep.ByOwner)
	require.Equal(t, map[string]int{"alice": 2, "bob": 1}, rep.ByTag)

	// Newest first.
	require.Len(t, rep.Leads, 3)
	require.Equal(t, "lead-3", rep.Leads[0].LeadID)
	require.Equal(t, "lead-2", rep.Leads[1].LeadID)
	require.Equal(t, "lead-1", rep.Leads[2].LeadID)

	require.True(t, rep.Leads[0].Imported)
	require.Equal(t, "Alice", rep.Leads[0].OwnerName)
	require.Equal(t, "Contact 3", rep.Leads[0].Attributes[types.AttrName])
}

func TestReporterOwnerFilter(t *testing.T) {
	store := seedLeads(t)
	reporter := NewReporter(store)

	rep, err := reporter.Build(context.Background(), types.LeadFilter{OwnerID: 2})
	require.NoError(t, err)

	require.Equal(t, 1, rep.Total)
	require.Equal(t, map[string]int{"Bob": 1}, rep.ByOwner)
	require.Equal(t, "lead-2", rep.Leads[0].LeadID)
}

func TestReporterTagFilter(t *testing.T) {
	store := seedLeads(t)
	reporter := NewReporter(store)

	rep, err := reporter.Build(context.Background(), types.LeadFilter{Tag: "ALI"})
	require.NoError(t, err)

	require.Equal(t, 2, rep.Total)
	require.Equal(t, map[string]int{"alice": 2}, rep.ByTag)
}

func TestReporterTimeWindow(t *testing.T) {
	store := seedLeads(t)
	reporter := NewReporter(store)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rep, err := reporter.Build(context.Background(), types.LeadFilter{
		From:  base.Add(90 * time.Minute),
		Until: base.Add(150 * time.Minute),
	})
	require.NoError(t, err)

	require.Equal(t, 1, rep.Total)
	require.Equal(t, "lead-2", rep.Leads[0].LeadID)
}

func TestReporterEmpty(t *testing.T) {
	store := distest.NewMemStore()
	reporter := NewReporter(store)

	rep, err := reporter.Build(context.Background(), types.LeadFilter{})
	require.NoError(t, err)
	require.Zero(t, rep.Total)
	require.Empty(t, rep.Leads)
	require.Empty(t, rep.ByOwner)
}
