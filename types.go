package distribuidor

import "github.com/BrunoSalvador97/zaia-distribuidor/types"

// Re-export types from the types package.
//
// This file provides a stable public API for the library's core types and
// interfaces via type aliases. Internal packages depend on the types
// subpackage to avoid import cycles, while users can refer to
// distribuidor.Owner, distribuidor.Store, etc.
type (
	Owner            = types.Owner
	OwnerID          = types.OwnerID
	Lead             = types.Lead
	Cursor           = types.Cursor
	Reservation      = types.Reservation
	MessageRecord    = types.MessageRecord
	Assignment       = types.Assignment
	AssignmentResult = types.AssignmentResult
	LeadFilter       = types.LeadFilter
)

// Re-export interfaces from the types package for convenience.
type (
	Store                  = types.Store
	ContactResolver        = types.ContactResolver
	RosterSource           = types.RosterSource
	AssignmentPolicy       = types.AssignmentPolicy
	NotificationDispatcher = types.NotificationDispatcher
	MetricsCollector       = types.MetricsCollector
	Logger                 = types.Logger
)
