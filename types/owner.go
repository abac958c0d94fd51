package types

// OwnerID is the stable, unique identifier of an owner (seller).
//
// Roster ordering for policy purposes is by OwnerID ascending.
type OwnerID int64

// Owner is a pool member eligible to receive new leads.
//
// The roster is mutated only by external administration; the routing core
// treats it as read-only input per decision. An owner deactivated between
// roster load and commit keeps the in-flight assignment: deactivation takes
// effect for the next decision only.
type Owner struct {
	// ID is the stable, unique owner identifier.
	ID OwnerID `json:"id"`

	// DisplayName is the human-readable owner name used in notifications
	// and reports.
	DisplayName string `json:"display_name"`

	// ContactHandle is the messaging-platform handle (e.g. phone number)
	// that notifications for this owner are delivered to.
	ContactHandle string `json:"contact_handle"`

	// RoutingTag is the platform label applied to contacts routed to this
	// owner (e.g. a WhatsApp label).
	RoutingTag string `json:"routing_tag"`

	// Active reports whether the owner currently participates in rotation.
	Active bool `json:"active"`
}
