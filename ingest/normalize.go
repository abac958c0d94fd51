package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// Event is a normalized inbound webhook event.
type Event struct {
	// ContactID is the contact identity (phone number as sent by the
	// platform).
	ContactID string

	// Attributes holds the recognized lead attributes under canonical
	// keys (types.AttrName, types.AttrCompany, ...). Only keys present
	// in the payload appear.
	Attributes map[string]string

	// Messages are the contact messages carried by the event, in payload
	// order. LeadID and Timestamp are unset; the processor fills them in.
	Messages []types.MessageRecord
}

// attrAliases maps the payload field names (localized first, English
// fallback) to canonical attribute keys.
var attrAliases = map[string][]string{
	types.AttrName:      {"nome", "name"},
	types.AttrCompany:   {"empresa", "company"},
	types.AttrCity:      {"cidade", "city"},
	types.AttrMediaType: {"tipo_midia", "media_type"},
	types.AttrPeriod:    {"periodo", "period"},
	types.AttrBudget:    {"orcamento", "budget"},
}

// Normalize parses a raw webhook body into an Event.
//
// The payload may wrap its fields in an "eventData" object; the contact
// phone is taken from "phone_number", "from" or "sender" in that order;
// messages come either as a "mensagens"/"messages" array of {text, origem}
// objects or as a single top-level "text" field.
//
// Parameters:
//   - payload: Raw webhook request body
//
// Returns:
//   - *Event: Normalized event
//   - error: ErrInvalidInput for malformed JSON, an empty payload, or a
//     missing contact phone
func Normalize(payload []byte) (*Event, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload: %v", types.ErrInvalidInput, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty webhook payload", types.ErrInvalidInput)
	}

	if inner, ok := raw["eventData"].(map[string]any); ok {
		raw = inner
	}

	contactID := firstString(raw, "phone_number", "from", "sender")
	if contactID == "" {
		return nil, fmt.Errorf("%w: contact phone number is required", types.ErrInvalidInput)
	}

	ev := &Event{
		ContactID:  contactID,
		Attributes: make(map[string]string),
	}
	for key, aliases := range attrAliases {
		if v := firstString(raw, aliases...); v != "" {
			ev.Attributes[key] = v
		}
	}
	ev.Messages = extractMessages(raw)

	return ev, nil
}

// extractMessages pulls the message list out of the payload, falling back
// to a single "text" field when no list is present.
func extractMessages(raw map[string]any) []types.MessageRecord {
	list, ok := raw["mensagens"].([]any)
	if !ok {
		list, ok = raw["messages"].([]any)
	}
	if !ok {
		if text := stringValue(raw["text"]); text != "" {
			return []types.MessageRecord{{Text: text, Origin: types.OriginContact}}
		}

		return nil
	}

	msgs := make([]types.MessageRecord, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text := stringValue(entry["text"])
		if text == "" {
			continue
		}

		origin := types.OriginContact
		if o := firstString(entry, "origem", "origin"); o != "" {
			if types.MessageOrigin(strings.ToLower(o)) == types.OriginOwner {
				origin = types.OriginOwner
			}
		}

		msgs = append(msgs, types.MessageRecord{Text: text, Origin: origin})
	}

	return msgs
}

// firstString returns the first non-empty string value among the given keys.
func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringValue(raw[key]); v != "" {
			return v
		}
	}

	return ""
}

func stringValue(v any) string {
	s, _ := v.(string)

	return strings.TrimSpace(s)
}
