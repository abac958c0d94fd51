package ingest

import (
	"context"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// Assigner routes a contact to an owner. Implemented by the Router.
type Assigner interface {
	Assign(ctx context.Context, contactID string, attrs map[string]string) (*types.AssignmentResult, error)
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets a logger.
func WithLogger(logger types.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor turns raw webhook payloads into routed assignments.
//
// For each payload it normalizes the event, routes the contact through the
// assigner, and appends the carried messages to the lead's history. History
// recording is best effort: once the assignment committed, a history failure
// is logged and the routing outcome is still returned.
type Processor struct {
	assigner Assigner
	messages types.MessageLog
	logger   types.Logger
}

// NewProcessor creates a Processor.
//
// Parameters:
//   - assigner: Routing engine (typically *distribuidor.Router)
//   - messages: Message history sink
//   - opts: Optional logger
//
// Returns:
//   - *Processor: Ready processor
func NewProcessor(assigner Assigner, messages types.MessageLog, opts ...Option) *Processor {
	p := &Processor{
		assigner: assigner,
		messages: messages,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process handles one inbound webhook payload end to end.
//
// Parameters:
//   - ctx: Context for the assignment and history writes
//   - payload: Raw webhook request body
//
// Returns:
//   - *types.AssignmentResult: The routing outcome, new or sticky
//   - error: ErrInvalidInput for bad payloads, or the assignment error
func (p *Processor) Process(ctx context.Context, payload []byte) (*types.AssignmentResult, error) {
	ev, err := Normalize(payload)
	if err != nil {
		return nil, err
	}

	result, err := p.assigner.Assign(ctx, ev.ContactID, ev.Attributes)
	if err != nil {
		return nil, err
	}

	if len(ev.Messages) > 0 {
		now := time.Now().UTC()
		msgs := make([]types.MessageRecord, len(ev.Messages))
		for i, m := range ev.Messages {
			m.LeadID = result.LeadID
			m.Timestamp = now
			msgs[i] = m
		}

		if err := p.messages.AppendMessages(ctx, result.LeadID, msgs); err != nil {
			if p.logger != nil {
				p.logger.Warn("failed to record message history",
					"lead_id", result.LeadID,
					"count", len(msgs),
					"error", err)
			}
		}
	}

	return result, nil
}
