package types

// Assignment is a resolved lead together with its denormalized owner, as
// returned by ContactResolver lookups and reporting queries.
type Assignment struct {
	Lead  *Lead  `json:"lead"`
	Owner *Owner `json:"owner"`
}

// AssignmentResult is the outcome of a routing decision.
//
// It carries the denormalized owner display data so callers can build
// notifications and responses without a second roster read.
type AssignmentResult struct {
	// IsNew is true when this call created the lead, false when the
	// contact was already bound to an owner (sticky return path).
	IsNew bool `json:"is_new"`

	// LeadID is the identifier of the (new or existing) lead.
	LeadID string `json:"lead_id"`

	// OwnerID is the owner the contact is bound to.
	OwnerID OwnerID `json:"owner_id"`

	// OwnerDisplayName is the owner's human-readable name.
	OwnerDisplayName string `json:"owner_display_name"`

	// OwnerContactHandle is the owner's messaging-platform handle.
	OwnerContactHandle string `json:"owner_contact_handle"`

	// OwnerTag is the owner's routing tag.
	OwnerTag string `json:"owner_tag"`
}

// ResultFor builds an AssignmentResult from a lead and its owner.
func ResultFor(isNew bool, lead *Lead, owner *Owner) *AssignmentResult {
	return &AssignmentResult{
		IsNew:              isNew,
		LeadID:             lead.ID,
		OwnerID:            owner.ID,
		OwnerDisplayName:   owner.DisplayName,
		OwnerContactHandle: owner.ContactHandle,
		OwnerTag:           owner.RoutingTag,
	}
}
