package distribuidor

// Option configures a Router with optional dependencies.
type Option func(*routerOptions)

// routerOptions holds optional Router configuration.
type routerOptions struct {
	logger     Logger
	metrics    MetricsCollector
	dispatcher Enqueuer
}

// Enqueuer accepts committed assignment results for best-effort
// notification. Implemented by dispatch.Queue.
type Enqueuer interface {
	// Enqueue hands off a committed assignment. It must not block; a
	// full-queue error is logged by the router and never affects the
	// assignment.
	Enqueue(result *AssignmentResult, lead *Lead) error
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with slog via logging.NewSlog)
//
// Returns:
//   - Option: Functional option for NewRouter
//
// Example:
//
//	router, err := distribuidor.NewRouter(&cfg, store, pol,
//	    distribuidor.WithLogger(logging.NewSlogDefault()))
func WithLogger(logger Logger) Option {
	return func(o *routerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewRouter
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *routerOptions) {
		o.metrics = metrics
	}
}

// WithDispatchQueue sets the notification queue that committed assignments
// are handed to. Without it the router performs no outbound notification;
// callers dispatch themselves.
//
// Parameters:
//   - q: Enqueuer implementation (typically *dispatch.Queue)
//
// Returns:
//   - Option: Functional option for NewRouter
func WithDispatchQueue(q Enqueuer) Option {
	return func(o *routerOptions) {
		o.dispatcher = q
	}
}
