// Package ingest normalizes inbound webhook payloads and drives them through
// the router.
//
// Webhook producers are loose with field names: the contact phone may arrive
// as "phone_number", "from" or "sender", the payload may or may not be
// wrapped in an "eventData" object, and lead attributes come under localized
// or English keys. Normalize flattens all of that into a canonical Event;
// Processor then assigns the lead, records the conversation history, and
// returns the routing outcome.
package ingest
