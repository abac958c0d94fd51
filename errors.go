package distribuidor

import "github.com/BrunoSalvador97/zaia-distribuidor/types"

// Sentinel errors returned by the Router, re-exported from the types package
// so callers can classify failures with errors.Is without importing types.
var (
	// ErrInvalidInput is returned when the contact identifier is missing
	// or malformed.
	ErrInvalidInput = types.ErrInvalidInput

	// ErrNoActiveOwners is returned when the active roster is empty.
	ErrNoActiveOwners = types.ErrNoActiveOwners

	// ErrAssignmentFailed is returned when the assignment could not be
	// committed within the internal retry budget.
	ErrAssignmentFailed = types.ErrAssignmentFailed

	// ErrStoreUnavailable indicates the underlying store could not be
	// reached.
	ErrStoreUnavailable = types.ErrStoreUnavailable

	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrStoreRequired is returned when the store is nil.
	ErrStoreRequired = types.ErrStoreRequired

	// ErrPolicyRequired is returned when the assignment policy is nil.
	ErrPolicyRequired = types.ErrPolicyRequired
)
