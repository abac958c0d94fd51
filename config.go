package distribuidor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// KVBucketConfig configures the NATS JetStream KV bucket names used by the
// natskv store. Mirrored into natskv.Config when wiring the store.
type KVBucketConfig struct {
	// LeadsBucket holds lead entries keyed by contact.
	LeadsBucket string `yaml:"leadsBucket"`

	// RosterBucket holds owner entries.
	RosterBucket string `yaml:"rosterBucket"`

	// CursorBucket holds the singleton rotation cursor.
	CursorBucket string `yaml:"cursorBucket"`

	// MessagesBucket holds per-lead message history.
	MessagesBucket string `yaml:"messagesBucket"`
}

// DispatchConfig controls the best-effort notification queue.
type DispatchConfig struct {
	// QueueSize is the capacity of the notification queue. Enqueueing
	// into a full queue fails without blocking the assignment.
	QueueSize int `yaml:"queueSize"`

	// MaxRetries is how many times a failed notification is re-attempted
	// before being dropped.
	MaxRetries int `yaml:"maxRetries"`

	// RetryBackoff is the base delay between notification retries,
	// doubled on each attempt.
	RetryBackoff time.Duration `yaml:"retryBackoff"`

	// SendTimeout bounds a single outbound notification attempt.
	SendTimeout time.Duration `yaml:"sendTimeout"`
}

// Config is the configuration for the Router.
//
// All duration fields accept standard Go duration strings like "25ms", "10s".
type Config struct {
	// MaxAssignAttempts bounds the internal retry loop absorbing benign
	// races (duplicate contact, cursor conflict, pending reservation).
	// Each attempt re-resolves the contact from scratch.
	// Recommended: 3.
	MaxAssignAttempts int `yaml:"maxAssignAttempts"`

	// RetryBackoff is the pause before re-attempting after a benign race.
	// Kept short: the competing writer is typically done within
	// milliseconds. Recommended: 25ms.
	RetryBackoff time.Duration `yaml:"retryBackoff"`

	// PendingGrace is how long an in-flight reservation from another
	// writer is honored before being reclaimed as abandoned. Must exceed
	// the longest expected assignment attempt. Recommended: 10s.
	PendingGrace time.Duration `yaml:"pendingGrace"`

	// OperationTimeout bounds individual store operations.
	// Recommended: 10s.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// KVBuckets controls NATS JetStream KV bucket configuration.
	KVBuckets KVBucketConfig `yaml:"kvBuckets"`

	// Dispatch controls the best-effort notification queue.
	Dispatch DispatchConfig `yaml:"dispatch"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	cfg := Config{}
	SetDefaults(&cfg)

	return cfg
}

// SetDefaults fills zero-valued fields of cfg with default values.
func SetDefaults(cfg *Config) {
	if cfg.MaxAssignAttempts <= 0 {
		cfg.MaxAssignAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 25 * time.Millisecond
	}
	if cfg.PendingGrace <= 0 {
		cfg.PendingGrace = 10 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 10 * time.Second
	}

	if cfg.KVBuckets.LeadsBucket == "" {
		cfg.KVBuckets.LeadsBucket = "distribuidor-leads"
	}
	if cfg.KVBuckets.RosterBucket == "" {
		cfg.KVBuckets.RosterBucket = "distribuidor-roster"
	}
	if cfg.KVBuckets.CursorBucket == "" {
		cfg.KVBuckets.CursorBucket = "distribuidor-cursor"
	}
	if cfg.KVBuckets.MessagesBucket == "" {
		cfg.KVBuckets.MessagesBucket = "distribuidor-messages"
	}

	if cfg.Dispatch.QueueSize <= 0 {
		cfg.Dispatch.QueueSize = 256
	}
	if cfg.Dispatch.MaxRetries <= 0 {
		cfg.Dispatch.MaxRetries = 3
	}
	if cfg.Dispatch.RetryBackoff <= 0 {
		cfg.Dispatch.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Dispatch.SendTimeout <= 0 {
		cfg.Dispatch.SendTimeout = 10 * time.Second
	}
}

// Validate checks the configuration for inconsistent values.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with the offending field, or nil
func (c *Config) Validate() error {
	if c.MaxAssignAttempts < 1 {
		return fmt.Errorf("%w: maxAssignAttempts must be >= 1", ErrInvalidConfig)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("%w: retryBackoff must not be negative", ErrInvalidConfig)
	}
	if c.PendingGrace < c.OperationTimeout {
		return fmt.Errorf("%w: pendingGrace must be >= operationTimeout, otherwise live reservations get reclaimed", ErrInvalidConfig)
	}
	if c.Dispatch.QueueSize < 1 {
		return fmt.Errorf("%w: dispatch queueSize must be >= 1", ErrInvalidConfig)
	}

	return nil
}

// LoadConfig reads a YAML configuration file, fills defaults, and validates.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - Config: Parsed configuration with defaults applied
//   - error: Read, parse, or validation error
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
