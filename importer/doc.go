// Package importer backfills pre-existing platform contacts as routed leads.
//
// The messaging platform accumulates conversations before routing is turned
// on. The importer lists those contacts and routes each unknown one through
// the regular assignment path, so imported leads honor the same
// unique-contact and rotation invariants as webhook traffic. Contacts that
// already have a lead are skipped.
package importer
