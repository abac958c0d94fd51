// Package natskv implements the durable routing state store on NATS
// JetStream KeyValue buckets.
//
// The consistency contract maps directly onto JetStream KV primitives:
//
//   - Unique-contact constraint: Reserve uses kv.Create, which atomically
//     fails when an entry for the contact already exists. Two concurrent
//     assignments for the same new contact can never both succeed.
//   - Cursor compare-and-swap: AdvanceCursor uses kv.Update at the revision
//     observed when the cursor was read. Two concurrent assignments for
//     different contacts can never both act on the same cursor observation.
//
// New leads are written in two phases: Reserve creates a pending entry
// (claiming the contact before the cursor is touched, so the cursor advances
// exactly once per contact), then Commit finalizes the entry at the
// reservation's revision. A pending entry left behind by a crashed writer is
// reclaimed after a grace period.
//
// Four buckets are used: leads, roster, cursor, and messages. Contact
// identifiers are base64url-encoded in lead keys because characters such as
// '+' in phone numbers are not legal KV key characters.
package natskv
