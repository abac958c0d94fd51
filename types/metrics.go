package types

import "time"

// MetricsCollector records routing and dispatch metrics.
//
// All methods must be safe for concurrent use and cheap enough for the hot
// path. A no-op implementation is used when no collector is configured.
type MetricsCollector interface {
	// RecordAssignment records a completed assignment decision.
	// isNew distinguishes the new-lead path from the sticky return path.
	RecordAssignment(isNew bool, duration time.Duration)

	// RecordAssignmentError records a failed assignment with a stable
	// reason label (e.g. "invalid_input", "no_active_owners",
	// "retries_exhausted", "store_unavailable").
	RecordAssignmentError(reason string)

	// RecordRetry records an internally absorbed race retry with a stable
	// kind label (e.g. "duplicate_contact", "cursor_conflict",
	// "contact_pending").
	RecordRetry(kind string)

	// RecordDispatch records an outbound notification attempt outcome.
	RecordDispatch(event string, success bool, duration time.Duration)
}
