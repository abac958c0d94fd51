// Package testing provides test utilities for the lead distributor.
//
// This package offers helpers for setting up test environments: an embedded
// NATS server with JetStream for integration testing, an in-memory Store for
// fast unit tests, and a testing.T-backed logger. It follows Go's convention
// of providing testing utilities in a dedicated package (similar to
// net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - NewMemStore: In-memory types.Store with faithful CAS semantics
//   - NewTestLogger: Logger writing to the test log
//
// Example usage:
//
//	import (
//	    "testing"
//	    disttest "github.com/BrunoSalvador97/zaia-distribuidor/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := disttest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
