// Package types provides core type definitions and interfaces for the lead
// distributor.
//
// This package contains shared types that are used across multiple packages.
// By keeping these types in a separate package, we avoid import cycles between
// the main distribuidor package and its store, policy, and dispatch
// implementations.
//
// Key types:
//   - Owner: A pool member eligible to receive new leads
//   - Lead: A persisted record binding a contact to an owner
//   - Cursor: The shared rotation pointer for new-lead selection
//   - AssignmentResult: Outcome of a routing decision
//   - Store: Durable state contract (resolver, roster, cursor, lead writer)
//   - AssignmentPolicy: Pluggable owner-selection strategy
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
