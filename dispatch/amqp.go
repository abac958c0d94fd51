package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

// Event types published by AMQPPublisher.
const (
	TypeLeadAssigned  = "leads.assigned.v1"
	TypeLeadReturned  = "leads.returned.v1"
	TypeContactTagged = "contacts.tagged.v1"
)

// EventMeta identifies a published event.
type EventMeta struct {
	// ID is the unique event ID (UUID).
	ID string `json:"id"`

	// Producer is the emitting service name.
	Producer string `json:"producer,omitempty"`

	// Time is when the event was emitted.
	Time time.Time `json:"time"`

	// Type is the event name and version, e.g. leads.assigned.v1.
	Type string `json:"type"`
}

// Envelope is the wire format of published events.
type Envelope struct {
	Meta EventMeta `json:"meta"`
	Data any       `json:"data"`
}

// AssignmentEvent is the payload of lead assignment events.
type AssignmentEvent struct {
	Result *types.AssignmentResult `json:"result"`
	Lead   *types.Lead             `json:"lead"`
}

// TagEvent is the payload of contact tag events.
type TagEvent struct {
	ContactID string `json:"contact_id"`
	Tag       string `json:"tag"`
}

// AMQPConfig configures an AMQPPublisher.
type AMQPConfig struct {
	// URL is the AMQP connection string.
	URL string

	// Exchange is the topic exchange events are published to.
	// Default: "distribuidor.events".
	Exchange string

	// Producer names the emitting service in event metadata.
	// Default: "zaia-distribuidor".
	Producer string

	// DialAttempts is how many connection attempts are made with
	// exponential backoff before giving up. Default: 5.
	DialAttempts int

	// DialBackoff is the base delay between connection attempts, doubled
	// each attempt and capped at 30s. Default: 1s.
	DialBackoff time.Duration
}

// SetDefaults fills zero-valued fields of cfg with default values.
func (cfg *AMQPConfig) SetDefaults() {
	if cfg.Exchange == "" {
		cfg.Exchange = "distribuidor.events"
	}
	if cfg.Producer == "" {
		cfg.Producer = "zaia-distribuidor"
	}
	if cfg.DialAttempts <= 0 {
		cfg.DialAttempts = 5
	}
	if cfg.DialBackoff <= 0 {
		cfg.DialBackoff = time.Second
	}
}

// AMQPPublisher publishes assignment events to a RabbitMQ topic exchange.
//
// It implements types.NotificationDispatcher for deployments that fan
// notifications out through an event bus instead of calling the messaging
// platform directly. The routing key equals the event type, so consumers can
// bind "leads.*" or a single event.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	exchange string
	producer string
	logger   types.Logger
}

var _ types.NotificationDispatcher = (*AMQPPublisher)(nil)

// NewAMQPPublisher connects to RabbitMQ with bounded retries and declares
// the topic exchange.
//
// Parameters:
//   - ctx: Bounds the connection attempts
//   - cfg: Connection and exchange configuration
//   - logger: Logger, nil for silent operation
//
// Returns:
//   - *AMQPPublisher: Connected publisher, stop with Close
//   - error: ErrInvalidConfig or connection failure
func NewAMQPPublisher(ctx context.Context, cfg AMQPConfig, logger types.Logger) (*AMQPPublisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: amqp URL is required", types.ErrInvalidConfig)
	}
	cfg.SetDefaults()

	conn, err := dialWithRetry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &AMQPPublisher{
		conn:     conn,
		exchange: cfg.Exchange,
		producer: cfg.Producer,
		logger:   logger,
	}, nil
}

// NotifyAssignment publishes a leads.assigned.v1 or leads.returned.v1 event.
func (p *AMQPPublisher) NotifyAssignment(ctx context.Context, result *types.AssignmentResult, lead *types.Lead) error {
	eventType := TypeLeadReturned
	if result.IsNew {
		eventType = TypeLeadAssigned
	}

	return p.publish(ctx, eventType, AssignmentEvent{Result: result, Lead: lead})
}

// TagContact publishes a contacts.tagged.v1 event.
func (p *AMQPPublisher) TagContact(ctx context.Context, contactID, tag string) error {
	return p.publish(ctx, TypeContactTagged, TagEvent{ContactID: contactID, Tag: tag})
}

// Close closes the underlying connection.
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

func (p *AMQPPublisher) publish(ctx context.Context, eventType string, data any) error {
	env := Envelope{
		Meta: EventMeta{
			ID:       uuid.NewString(),
			Producer: p.producer,
			Time:     time.Now().UTC(),
			Type:     eventType,
		},
		Data: data,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, p.exchange, eventType, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    env.Meta.ID,
			Timestamp:    env.Meta.Time,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	if p.logger != nil {
		p.logger.Debug("event published", "type", eventType, "exchange", p.exchange)
	}

	return nil
}

// dialWithRetry connects with exponential backoff, honoring ctx cancellation.
func dialWithRetry(ctx context.Context, cfg AMQPConfig, logger types.Logger) (*amqp091.Connection, error) {
	const maxBackoff = 30 * time.Second

	backoff := cfg.DialBackoff

	var lastErr error
	for attempt := 1; attempt <= cfg.DialAttempts; attempt++ {
		conn, err := amqp091.Dial(cfg.URL)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if attempt == cfg.DialAttempts {
			break
		}

		if logger != nil {
			logger.Warn("amqp dial failed",
				"attempt", attempt,
				"backoff", backoff,
				"error", err)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("amqp dial cancelled: %w", ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return nil, fmt.Errorf("failed to connect to amqp after %d attempts: %w", cfg.DialAttempts, lastErr)
}
