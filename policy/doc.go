// Package policy provides built-in owner-selection policy implementations.
//
// An assignment policy decides which active owner receives a new lead. The
// package includes three built-in policies:
//
//   - RoundRobin: fixed modulo rotation over the ordered roster (default)
//   - LeastLoaded: the owner with the fewest committed leads
//   - HashAffinity: a stable hash of the contact identity
//
// # Policy Selection Guide
//
// RoundRobin:
//   - The default and recommended policy
//   - O(1) per decision, no storage access
//   - Strict fair rotation: no owner skipped or doubled within one full
//     rotation
//
// LeastLoaded:
//   - Use when lead handling time varies widely between owners
//   - Consults per-owner lead counts on every decision (a full scan on
//     stores without native counters)
//
// HashAffinity:
//   - Use when the same contact must map to the same owner even before a
//     lead exists (e.g. pre-provisioned routing)
//   - Distribution fairness depends on the contact identity space
//
// The policies are mutually exclusive alternatives behind one interface;
// they are never combined. Custom policies can be implemented by satisfying
// the types.AssignmentPolicy interface.
package policy
