package types

import "errors"

// Sentinel errors for the lead distributor.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components should use these sentinel errors for known
// error conditions and wrap external errors with context using
// fmt.Errorf("%s: %w", msg, err).

// Router errors - failures surfaced to the caller of Assign.
var (
	// ErrInvalidInput is returned when the contact identifier is missing
	// or malformed. Caller's fault, not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoActiveOwners is returned when the active roster is empty.
	// Operational misconfiguration; fatal to the request, no partial
	// state is created.
	ErrNoActiveOwners = errors.New("no active owners available")

	// ErrAssignmentFailed is returned when the assignment could not be
	// committed, either because the internal retry budget was exhausted
	// or because of a non-transient store fault.
	ErrAssignmentFailed = errors.New("assignment failed")

	// ErrStoreUnavailable indicates the underlying store could not be
	// reached. Requests failing with it should be retried by the upstream
	// event-delivery mechanism.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store errors - race and lookup conditions absorbed or classified by the
// router's retry loop.
var (
	// ErrLeadNotFound is returned when no committed lead exists for a
	// contact.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrOwnerNotFound is returned when no owner with the given ID exists.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrDuplicateContact is returned when a lead for the contact was
	// committed concurrently. Benign race: the router re-resolves and
	// returns the winner's assignment.
	ErrDuplicateContact = errors.New("duplicate contact")

	// ErrContactPending is returned when another assignment for the same
	// contact is in flight. Benign race, retried with backoff.
	ErrContactPending = errors.New("contact assignment pending")

	// ErrCursorConflict is returned when the rotation cursor advanced
	// between read and compare-and-swap. Benign race: the router re-reads
	// and re-selects.
	ErrCursorConflict = errors.New("rotation cursor conflict")
)

// Constructor errors - invalid wiring detected at build time.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStoreRequired is returned when the store is nil.
	ErrStoreRequired = errors.New("store is required")

	// ErrPolicyRequired is returned when the assignment policy is nil.
	ErrPolicyRequired = errors.New("assignment policy is required")
)

// Dispatch errors.
var (
	// ErrQueueFull is returned when the dispatch queue cannot accept
	// another notification. The assignment itself is unaffected.
	ErrQueueFull = errors.New("dispatch queue full")

	// ErrQueueClosed is returned when enqueueing after Close.
	ErrQueueClosed = errors.New("dispatch queue closed")
)
