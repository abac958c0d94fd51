package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

type fakeDispatcher struct {
	mu        sync.Mutex
	notifies  []*types.AssignmentResult
	tags      []string
	failFirst int
}

func (f *fakeDispatcher) NotifyAssignment(_ context.Context, result *types.AssignmentResult, _ *types.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failFirst > 0 {
		f.failFirst--
		return errors.New("delivery failed")
	}
	f.notifies = append(f.notifies, result)

	return nil
}

func (f *fakeDispatcher) TagContact(_ context.Context, _, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)

	return nil
}

func (f *fakeDispatcher) snapshot() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.notifies), append([]string(nil), f.tags...)
}

type blockingDispatcher struct {
	started atomic.Bool
	release chan struct{}
}

func (b *blockingDispatcher) NotifyAssignment(_ context.Context, _ *types.AssignmentResult, _ *types.Lead) error {
	b.started.Store(true)
	<-b.release

	return nil
}

func (b *blockingDispatcher) TagContact(_ context.Context, _, _ string) error {
	return nil
}

func testTask(isNew bool) (*types.AssignmentResult, *types.Lead) {
	lead := &types.Lead{
		ID:        "lead-1",
		ContactID: "+5511999990000",
		OwnerID:   1,
	}
	owner := &types.Owner{
		ID:            1,
		DisplayName:   "Alice",
		ContactHandle: "+5511888880000",
		RoutingTag:    "alice",
	}

	return types.ResultFor(isNew, lead, owner), lead
}

func TestQueueDelivers(t *testing.T) {
	d := &fakeDispatcher{}
	q := NewQueue(QueueConfig{Size: 8}, d)

	result, lead := testTask(true)
	require.NoError(t, q.Enqueue(result, lead))
	require.NoError(t, q.Close(context.Background()))

	notified, tags := d.snapshot()
	require.Equal(t, 1, notified)
	require.Equal(t, []string{"alice"}, tags)
}

func TestQueueSkipsTagForReturningLead(t *testing.T) {
	d := &fakeDispatcher{}
	q := NewQueue(QueueConfig{Size: 8}, d)

	result, lead := testTask(false)
	require.NoError(t, q.Enqueue(result, lead))
	require.NoError(t, q.Close(context.Background()))

	notified, tags := d.snapshot()
	require.Equal(t, 1, notified)
	require.Empty(t, tags)
}

func TestQueueRetriesFailedDelivery(t *testing.T) {
	d := &fakeDispatcher{failFirst: 2}
	q := NewQueue(QueueConfig{
		Size:         8,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, d)

	result, lead := testTask(true)
	require.NoError(t, q.Enqueue(result, lead))
	require.NoError(t, q.Close(context.Background()))

	notified, _ := d.snapshot()
	require.Equal(t, 1, notified)
}

func TestQueueDropsAfterRetryBudget(t *testing.T) {
	d := &fakeDispatcher{failFirst: 10}
	q := NewQueue(QueueConfig{
		Size:         8,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, d)

	result, lead := testTask(true)
	require.NoError(t, q.Enqueue(result, lead))
	require.NoError(t, q.Close(context.Background()))

	notified, _ := d.snapshot()
	require.Zero(t, notified)
}

func TestQueueFull(t *testing.T) {
	// No worker drains the queue while it is blocked on the first task,
	// so a capacity-1 queue overflows on the second enqueue.
	block := make(chan struct{})
	d := &blockingDispatcher{release: block}
	q := NewQueue(QueueConfig{Size: 1}, d)

	result, lead := testTask(true)
	require.NoError(t, q.Enqueue(result, lead))

	// Wait until the worker picked up the first task, then fill the
	// single free slot and overflow.
	require.Eventually(t, func() bool {
		return d.started.Load()
	}, time.Second, time.Millisecond)

	require.NoError(t, q.Enqueue(result, lead))
	require.ErrorIs(t, q.Enqueue(result, lead), types.ErrQueueFull)

	close(block)
	require.NoError(t, q.Close(context.Background()))
}

func TestQueueClosed(t *testing.T) {
	d := &fakeDispatcher{}
	q := NewQueue(QueueConfig{Size: 8}, d)
	require.NoError(t, q.Close(context.Background()))

	result, lead := testTask(true)
	require.ErrorIs(t, q.Enqueue(result, lead), types.ErrQueueClosed)

	// Close is idempotent.
	require.NoError(t, q.Close(context.Background()))
}
