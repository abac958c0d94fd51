package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// Queue event labels, used for metrics and logging.
const (
	EventAssigned = "lead.assigned"
	EventReturned = "lead.returned"
)

// QueueConfig configures a notification Queue.
type QueueConfig struct {
	// Size is the channel capacity. Enqueue fails immediately when the
	// queue is full instead of blocking the routing hot path.
	// Default: 256.
	Size int

	// Workers is the number of delivery goroutines. Default: 1.
	Workers int

	// MaxRetries is how many times a failed delivery is re-attempted
	// before being dropped. Default: 3.
	MaxRetries int

	// RetryBackoff is the base delay between delivery retries, doubled
	// on each attempt. Default: 500ms.
	RetryBackoff time.Duration

	// SendTimeout bounds a single delivery attempt. Default: 10s.
	SendTimeout time.Duration
}

// SetDefaults fills zero-valued fields of cfg with default values.
func (cfg *QueueConfig) SetDefaults() {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
}

// Option configures a Queue with optional dependencies.
type Option func(*Queue)

// WithLogger sets a logger.
func WithLogger(logger types.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(q *Queue) {
		q.metrics = metrics
	}
}

type task struct {
	result *types.AssignmentResult
	lead   *types.Lead
}

// Queue delivers committed assignments to a NotificationDispatcher on
// background workers with bounded retries.
//
// Enqueue never blocks and a delivery failure never propagates back to the
// caller: notification is best effort by contract.
type Queue struct {
	cfg        QueueConfig
	dispatcher types.NotificationDispatcher
	logger     types.Logger
	metrics    types.MetricsCollector

	tasks  chan task
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewQueue creates a Queue and starts its delivery workers.
//
// Parameters:
//   - cfg: Queue configuration, zero fields filled with defaults
//   - dispatcher: Destination for notifications (e.g. *ZaiaClient)
//   - opts: Optional logger and metrics
//
// Returns:
//   - *Queue: Running queue, stop with Close
//
// Example:
//
//	q := dispatch.NewQueue(dispatch.QueueConfig{}, zaiaClient,
//	    dispatch.WithLogger(logger))
//	defer q.Close(context.Background())
func NewQueue(cfg QueueConfig, dispatcher types.NotificationDispatcher, opts ...Option) *Queue {
	cfg.SetDefaults()

	q := &Queue{
		cfg:        cfg,
		dispatcher: dispatcher,
		tasks:      make(chan task, cfg.Size),
	}
	for _, opt := range opts {
		opt(q)
	}

	q.wg.Add(cfg.Workers)
	for range cfg.Workers {
		go q.worker()
	}

	return q
}

// Enqueue hands a committed assignment to the delivery workers.
//
// Parameters:
//   - result: Committed assignment outcome
//   - lead: Full lead record backing the result
//
// Returns:
//   - error: ErrQueueFull when the queue is at capacity, ErrQueueClosed
//     after Close, nil otherwise
func (q *Queue) Enqueue(result *types.AssignmentResult, lead *types.Lead) error {
	if q.closed.Load() {
		return types.ErrQueueClosed
	}

	select {
	case q.tasks <- task{result: result, lead: lead}:
		return nil
	default:
		return types.ErrQueueFull
	}
}

// Close stops accepting work and waits for in-flight deliveries to drain.
//
// Parameters:
//   - ctx: Bounds the drain wait
//
// Returns:
//   - error: ctx.Err() if the drain did not finish in time
func (q *Queue) Close(ctx context.Context) error {
	if q.closed.Swap(true) {
		return nil
	}
	close(q.tasks)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for t := range q.tasks {
		q.deliver(t)
	}
}

// deliver runs one notification task to completion or drops it after the
// retry budget is spent.
func (q *Queue) deliver(t task) {
	event := EventReturned
	if t.result.IsNew {
		event = EventAssigned
	}

	backoff := q.cfg.RetryBackoff
	var lastErr error
	for attempt := 1; attempt <= q.cfg.MaxRetries; attempt++ {
		start := time.Now()
		err := q.send(t)
		q.record(event, err == nil, time.Since(start))

		if err == nil {
			return
		}
		lastErr = err

		if attempt < q.cfg.MaxRetries {
			q.logWarn("notification attempt failed, retrying",
				"event", event,
				"lead_id", t.result.LeadID,
				"attempt", attempt,
				"error", err)
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	q.logError("notification dropped after retries",
		"event", event,
		"lead_id", t.result.LeadID,
		"owner_id", t.result.OwnerID,
		"attempts", q.cfg.MaxRetries,
		"error", lastErr)
}

// send performs a single delivery attempt. The contact tag is applied only
// for newly created leads; returning contacts are already tagged.
func (q *Queue) send(t task) error {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.SendTimeout)
	defer cancel()

	if err := q.dispatcher.NotifyAssignment(ctx, t.result, t.lead); err != nil {
		return err
	}

	if t.result.IsNew && t.result.OwnerTag != "" {
		if err := q.dispatcher.TagContact(ctx, t.lead.ContactID, t.result.OwnerTag); err != nil {
			return err
		}
	}

	return nil
}

func (q *Queue) record(event string, success bool, duration time.Duration) {
	if q.metrics != nil {
		q.metrics.RecordDispatch(event, success, duration)
	}
}

func (q *Queue) logWarn(msg string, keysAndValues ...any) {
	if q.logger != nil {
		q.logger.Warn(msg, keysAndValues...)
	}
}

func (q *Queue) logError(msg string, keysAndValues ...any) {
	if q.logger != nil {
		q.logger.Error(msg, keysAndValues...)
	}
}
