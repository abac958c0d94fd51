package types

import "context"

// NotificationDispatcher delivers best-effort outbound notifications to the
// messaging platform after an assignment commits.
//
// Dispatch is explicitly decoupled from the routing decision: a dispatch
// failure is logged and retried independently and can never roll back or
// block the committed assignment.
type NotificationDispatcher interface {
	// NotifyAssignment informs the chosen owner about a new or returning
	// lead.
	NotifyAssignment(ctx context.Context, result *AssignmentResult, lead *Lead) error

	// TagContact applies the owner's routing tag to the contact on the
	// messaging platform.
	TagContact(ctx context.Context, contactID, tag string) error
}
