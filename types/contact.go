package types

// PlatformContact is a contact record as exposed by the messaging platform's
// contact listing API. Consumed by the bulk importer.
type PlatformContact struct {
	// Phone is the contact's phone number, used as the contact identity.
	Phone string `json:"phone"`

	// Name is the display name on the platform, may be empty.
	Name string `json:"name,omitempty"`

	// Tag is the routing tag currently applied on the platform, may be
	// empty.
	Tag string `json:"tag,omitempty"`
}
