// Package metrics provides types.MetricsCollector implementations.
package metrics

import (
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordAssignment discards the assignment outcome metric.
func (n *NopMetrics) RecordAssignment(_ bool, _ time.Duration) {
	// No-op
}

// RecordAssignmentError discards the assignment error metric.
func (n *NopMetrics) RecordAssignmentError(_ string) {
	// No-op
}

// RecordRetry discards the retry metric.
func (n *NopMetrics) RecordRetry(_ string) {
	// No-op
}

// RecordDispatch discards the dispatch outcome metric.
func (n *NopMetrics) RecordDispatch(_ string, _ bool, _ time.Duration) {
	// No-op
}
