package metrics

import (
	"sync"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use so that constructing the
// collector never panics on duplicate registration in tests.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	assignments        *prometheus.CounterVec
	assignmentErrors   *prometheus.CounterVec
	assignmentDuration prometheus.Histogram
	retries            *prometheus.CounterVec
	dispatches         *prometheus.CounterVec
	dispatchDuration   prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "distribuidor" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "distribuidor"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

// RecordAssignment records a completed assignment decision.
func (p *PrometheusCollector) RecordAssignment(isNew bool, duration time.Duration) {
	p.ensureRegistered()

	outcome := "returning"
	if isNew {
		outcome = "new"
	}
	p.assignments.WithLabelValues(outcome).Inc()
	p.assignmentDuration.Observe(duration.Seconds())
}

// RecordAssignmentError records a failed assignment by reason.
func (p *PrometheusCollector) RecordAssignmentError(reason string) {
	p.ensureRegistered()
	p.assignmentErrors.WithLabelValues(reason).Inc()
}

// RecordRetry records an internally absorbed race retry by kind.
func (p *PrometheusCollector) RecordRetry(kind string) {
	p.ensureRegistered()
	p.retries.WithLabelValues(kind).Inc()
}

// RecordDispatch records an outbound notification attempt outcome.
func (p *PrometheusCollector) RecordDispatch(event string, success bool, duration time.Duration) {
	p.ensureRegistered()

	outcome := "failure"
	if success {
		outcome = "success"
	}
	p.dispatches.WithLabelValues(event, outcome).Inc()
	p.dispatchDuration.Observe(duration.Seconds())
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.assignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "assignments_total",
			Help:      "Total completed assignment decisions by outcome (new,returning).",
		}, []string{"outcome"})

		p.assignmentErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "assignment_errors_total",
			Help:      "Total failed assignments by reason.",
		}, []string{"reason"})

		p.assignmentDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "assignment_duration_seconds",
			Help:      "Latency of assignment decisions in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		})

		p.retries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "router",
			Name:      "assign_retries_total",
			Help:      "Total internally absorbed race retries by kind (duplicate_contact,cursor_conflict,contact_pending).",
		}, []string{"kind"})

		p.dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "notifications_total",
			Help:      "Total outbound notification attempts by event and outcome.",
		}, []string{"event", "outcome"})

		p.dispatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "notification_duration_seconds",
			Help:      "Latency of outbound notification attempts in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		})

		p.reg.MustRegister(p.assignments)
		p.reg.MustRegister(p.assignmentErrors)
		p.reg.MustRegister(p.assignmentDuration)
		p.reg.MustRegister(p.retries)
		p.reg.MustRegister(p.dispatches)
		p.reg.MustRegister(p.dispatchDuration)
	})
}
