// Package dispatch provides best-effort outbound notification of committed
// assignments.
//
// Notification is explicitly decoupled from the routing decision: the router
// hands a committed AssignmentResult to a Queue, which delivers it on worker
// goroutines with independent bounded retries and backoff. A delivery failure
// is logged and counted but can never roll back or block the assignment.
//
// Two NotificationDispatcher implementations are included:
//
//   - ZaiaClient: direct HTTP calls to the messaging platform
//     (send message to the owner, tag the contact)
//   - AMQPPublisher: envelope events on a RabbitMQ topic exchange, for
//     deployments that fan notifications out through an event bus
package dispatch
