// Package distribuidor provides sticky, fair routing of inbound sales leads
// to a pool of owners.
//
// A returning contact is always routed back to the owner it was first
// assigned to; a new contact is distributed across the active roster by a
// pluggable selection policy (round-robin rotation by default). The
// assignment decision is committed atomically against a durable store, so
// concurrent webhook deliveries can never bind one contact to two owners or
// double-advance the rotation.
//
// # Quick Start
//
//	store, err := natskv.Open(ctx, natsConn, natskv.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := distribuidor.DefaultConfig()
//	router, err := distribuidor.NewRouter(&cfg, store, policy.NewRoundRobin())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := router.Assign(ctx, "+5511999990000", map[string]string{
//	    types.AttrName:    "Maria",
//	    types.AttrCompany: "Acme",
//	})
//
// # Architecture
//
// The router orchestrates four collaborators, all behind interfaces in the
// types package:
//
//   - Store: durable state (contact resolution, roster, rotation cursor,
//     lead persistence). The NATS JetStream KV implementation lives in
//     store/natskv; testing.NewMemStore provides an in-memory one.
//   - AssignmentPolicy: owner selection (policy.RoundRobin,
//     policy.LeastLoaded, policy.HashAffinity).
//   - NotificationDispatcher: best-effort outbound notification, decoupled
//     from the decision through dispatch.Queue.
//   - MetricsCollector / Logger: observability.
//
// Supporting packages cover the surrounding plumbing: ingest normalizes raw
// webhook payloads, report builds per-owner statistics, and importer seeds
// leads from the messaging platform's contact list.
//
// See the examples/ directory for complete working examples.
package distribuidor
