// Package report builds read-only summaries of routed leads.
//
// A Report aggregates committed leads with per-owner and per-tag counts and
// a newest-first list of denormalized lead summaries. Reporting never
// mutates routing state.
package report
