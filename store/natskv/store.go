package natskv

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/internal/kvutil"
	"github.com/BrunoSalvador97/zaia-distribuidor/internal/logging"
	"github.com/BrunoSalvador97/zaia-distribuidor/types"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// cursorKey is the singleton rotation cursor entry.
	cursorKey = "rotation"

	// ownerKeyPrefix prefixes roster entries ("owner.<id>").
	ownerKeyPrefix = "owner."

	// appendRetries bounds the read-modify-write loop on message history.
	appendRetries = 5
)

// Lead entry states.
const (
	statePending   = "pending"
	stateCommitted = "committed"
)

// Config configures bucket names and reclaim behavior.
type Config struct {
	// LeadsBucket holds lead entries keyed by encoded contact ID.
	LeadsBucket string `yaml:"leadsBucket"`

	// RosterBucket holds owner entries.
	RosterBucket string `yaml:"rosterBucket"`

	// CursorBucket holds the singleton rotation cursor.
	CursorBucket string `yaml:"cursorBucket"`

	// MessagesBucket holds per-lead message history.
	MessagesBucket string `yaml:"messagesBucket"`

	// PendingGrace is how long a pending reservation from another writer
	// is honored before being reclaimed as abandoned. Must exceed the
	// longest expected assignment attempt.
	PendingGrace time.Duration `yaml:"pendingGrace"`
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.LeadsBucket == "" {
		c.LeadsBucket = "distribuidor-leads"
	}
	if c.RosterBucket == "" {
		c.RosterBucket = "distribuidor-roster"
	}
	if c.CursorBucket == "" {
		c.CursorBucket = "distribuidor-cursor"
	}
	if c.MessagesBucket == "" {
		c.MessagesBucket = "distribuidor-messages"
	}
	if c.PendingGrace <= 0 {
		c.PendingGrace = 10 * time.Second
	}
}

// Option configures a Store with optional dependencies.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger types.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store implements types.Store on NATS JetStream KeyValue buckets.
type Store struct {
	leads    jetstream.KeyValue
	roster   jetstream.KeyValue
	cursor   jetstream.KeyValue
	messages jetstream.KeyValue

	pendingGrace time.Duration
	logger       types.Logger
}

// Compile-time assertion that Store implements the full contract.
var _ types.Store = (*Store)(nil)

// leadEntry is the stored representation of a (pending or committed) lead.
type leadEntry struct {
	State     string      `json:"state"`
	ContactID string      `json:"contact_id"`
	CreatedAt time.Time   `json:"created_at"`
	Lead      *types.Lead `json:"lead,omitempty"`
}

// cursorEntry is the stored representation of the rotation cursor.
type cursorEntry struct {
	Index     uint64    `json:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open creates or opens the store's KV buckets and returns a ready Store.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - conn: NATS connection with JetStream enabled
//   - cfg: Bucket names and reclaim behavior (zero fields get defaults)
//   - opts: Optional dependencies
//
// Returns:
//   - *Store: Ready store instance
//   - error: Bucket creation or connectivity error
//
// Example:
//
//	store, err := natskv.Open(ctx, nc, natskv.Config{}, natskv.WithLogger(logger))
func Open(ctx context.Context, conn *nats.Conn, cfg Config, opts ...Option) (*Store, error) {
	if conn == nil {
		return nil, errors.New("NATS connection is required")
	}
	cfg.SetDefaults()

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	s := &Store{
		pendingGrace: cfg.PendingGrace,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	buckets := []struct {
		name string
		dst  *jetstream.KeyValue
	}{
		{cfg.LeadsBucket, &s.leads},
		{cfg.RosterBucket, &s.roster},
		{cfg.CursorBucket, &s.cursor},
		{cfg.MessagesBucket, &s.messages},
	}
	for _, b := range buckets {
		kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: b.name}, 3)
		if err != nil {
			return nil, fmt.Errorf("failed to open bucket %s: %w", b.name, err)
		}
		*b.dst = kv
	}

	return s, nil
}

// leadKey encodes a contact ID into a legal KV key. Contact identifiers such
// as phone numbers contain '+', which is not a legal KV key character, so the
// encoding must be injective rather than a character strip.
func leadKey(contactID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(contactID))
}

// ownerKey builds the roster key for an owner ID.
func ownerKey(id types.OwnerID) string {
	return fmt.Sprintf("%s%d", ownerKeyPrefix, id)
}

// Resolve looks up the committed lead for contactID.
func (s *Store) Resolve(ctx context.Context, contactID string) (*types.Assignment, error) {
	entry, err := s.leads.Get(ctx, leadKey(contactID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, types.ErrLeadNotFound
		}

		return nil, storeFault("lead lookup", err)
	}

	var le leadEntry
	if err := json.Unmarshal(entry.Value(), &le); err != nil {
		return nil, fmt.Errorf("corrupt lead entry for contact: %w", err)
	}

	if le.State == statePending {
		if time.Since(le.CreatedAt) <= s.pendingGrace {
			return nil, types.ErrContactPending
		}
		// Abandoned reservation from a crashed writer: reclaim it so the
		// contact can be assigned again. Best effort; a concurrent
		// reclaim losing the delete race is harmless.
		if err := s.leads.Delete(ctx, leadKey(contactID), jetstream.LastRevision(entry.Revision())); err != nil {
			s.logger.Debug("stale reservation reclaim failed", "contact_id", contactID, "error", err)
		} else {
			s.logger.Warn("reclaimed stale lead reservation", "contact_id", contactID, "age", time.Since(le.CreatedAt))
		}

		return nil, types.ErrLeadNotFound
	}

	owner, err := s.Owner(ctx, le.Lead.OwnerID)
	if err != nil {
		if !errors.Is(err, types.ErrOwnerNotFound) {
			return nil, err
		}
		// The owner record was removed by administration after commit.
		// Ownership of the lead is immutable, so surface the bare ID.
		owner = &types.Owner{ID: le.Lead.OwnerID}
	}

	return &types.Assignment{Lead: le.Lead, Owner: owner}, nil
}

// Reserve claims contactID for a new-lead assignment via an atomic create.
func (s *Store) Reserve(ctx context.Context, contactID string) (*types.Reservation, error) {
	now := time.Now().UTC()
	data, err := json.Marshal(leadEntry{State: statePending, ContactID: contactID, CreatedAt: now})
	if err != nil {
		return nil, fmt.Errorf("failed to encode reservation: %w", err)
	}

	rev, err := s.leads.Create(ctx, leadKey(contactID), data)
	if err == nil {
		return &types.Reservation{ContactID: contactID, Revision: rev, CreatedAt: now}, nil
	}

	if !errors.Is(err, jetstream.ErrKeyExists) {
		return nil, storeFault("lead reservation", err)
	}

	// The key exists: either a committed lead (the caller should
	// re-resolve) or another in-flight reservation.
	entry, getErr := s.leads.Get(ctx, leadKey(contactID))
	if getErr != nil {
		// Entry vanished between create and get (aborted reservation);
		// the caller's retry loop will re-attempt.
		return nil, types.ErrContactPending
	}

	var le leadEntry
	if err := json.Unmarshal(entry.Value(), &le); err != nil {
		return nil, fmt.Errorf("corrupt lead entry for contact: %w", err)
	}
	if le.State == stateCommitted {
		return nil, types.ErrDuplicateContact
	}

	return nil, types.ErrContactPending
}

// Commit finalizes a reservation with the committed lead.
func (s *Store) Commit(ctx context.Context, res *types.Reservation, lead *types.Lead) error {
	data, err := json.Marshal(leadEntry{
		State:     stateCommitted,
		ContactID: res.ContactID,
		CreatedAt: lead.CreatedAt,
		Lead:      lead,
	})
	if err != nil {
		return fmt.Errorf("failed to encode lead: %w", err)
	}

	if _, err := s.leads.Update(ctx, leadKey(res.ContactID), data, res.Revision); err != nil {
		if isWrongLastSequence(err) {
			// The reservation was reclaimed as stale and taken over by
			// another writer. Treat as a lost duplicate race; the caller
			// re-resolves and returns the winner's assignment.
			return types.ErrDuplicateContact
		}

		return storeFault("lead commit", err)
	}

	return nil
}

// Abort releases a reservation whose assignment could not complete.
func (s *Store) Abort(ctx context.Context, res *types.Reservation) error {
	err := s.leads.Delete(ctx, leadKey(res.ContactID), jetstream.LastRevision(res.Revision))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		if isWrongLastSequence(err) {
			// Already reclaimed by another writer; nothing to release.
			return nil
		}

		return storeFault("reservation abort", err)
	}

	return nil
}

// Cursor returns the rotation cursor, creating it at index 0 on first read.
func (s *Store) Cursor(ctx context.Context) (*types.Cursor, error) {
	entry, err := s.cursor.Get(ctx, cursorKey)
	if err == nil {
		return decodeCursor(entry)
	}
	if !errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, storeFault("cursor read", err)
	}

	now := time.Now().UTC()
	data, err := json.Marshal(cursorEntry{Index: 0, UpdatedAt: now})
	if err != nil {
		return nil, fmt.Errorf("failed to encode cursor: %w", err)
	}

	rev, err := s.cursor.Create(ctx, cursorKey, data)
	if err == nil {
		return &types.Cursor{Index: 0, Revision: rev, UpdatedAt: now}, nil
	}
	if !errors.Is(err, jetstream.ErrKeyExists) {
		return nil, storeFault("cursor init", err)
	}

	// Lost the initialization race; read the winner's cursor.
	entry, err = s.cursor.Get(ctx, cursorKey)
	if err != nil {
		return nil, storeFault("cursor read", err)
	}

	return decodeCursor(entry)
}

// AdvanceCursor commits the next cursor value at the observed revision.
func (s *Store) AdvanceCursor(ctx context.Context, observed *types.Cursor, next uint64) error {
	data, err := json.Marshal(cursorEntry{Index: next, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode cursor: %w", err)
	}

	if _, err := s.cursor.Update(ctx, cursorKey, data, observed.Revision); err != nil {
		if isWrongLastSequence(err) {
			return types.ErrCursorConflict
		}

		return storeFault("cursor advance", err)
	}

	return nil
}

// ActiveOwners returns the active owners ordered by ID ascending.
func (s *Store) ActiveOwners(ctx context.Context) ([]types.Owner, error) {
	all, err := s.listOwners(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]types.Owner, 0, len(all))
	for _, o := range all {
		if o.Active {
			active = append(active, o)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	return active, nil
}

// Owner returns the owner with the given ID, active or not.
func (s *Store) Owner(ctx context.Context, id types.OwnerID) (*types.Owner, error) {
	entry, err := s.roster.Get(ctx, ownerKey(id))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, types.ErrOwnerNotFound
		}

		return nil, storeFault("owner lookup", err)
	}

	var o types.Owner
	if err := json.Unmarshal(entry.Value(), &o); err != nil {
		return nil, fmt.Errorf("corrupt owner entry: %w", err)
	}

	return &o, nil
}

// PutOwner creates or replaces an owner record.
func (s *Store) PutOwner(ctx context.Context, o types.Owner) error {
	if o.ID <= 0 {
		return fmt.Errorf("%w: owner ID must be positive", types.ErrInvalidInput)
	}

	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode owner: %w", err)
	}
	if _, err := s.roster.Put(ctx, ownerKey(o.ID), data); err != nil {
		return storeFault("owner put", err)
	}

	return nil
}

// SetOwnerActive toggles an owner's participation in rotation.
func (s *Store) SetOwnerActive(ctx context.Context, id types.OwnerID, active bool) error {
	o, err := s.Owner(ctx, id)
	if err != nil {
		return err
	}

	o.Active = active

	return s.PutOwner(ctx, *o)
}

// AppendMessages appends message records to the lead's history.
//
// The history is a single KV entry updated with a bounded read-modify-write
// loop, so concurrent appends for the same lead never lose records.
func (s *Store) AppendMessages(ctx context.Context, leadID string, msgs []types.MessageRecord) error {
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	stamped := make([]types.MessageRecord, len(msgs))
	for i, m := range msgs {
		m.LeadID = leadID
		if m.Origin == "" {
			m.Origin = types.OriginContact
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		stamped[i] = m
	}

	for attempt := 0; attempt < appendRetries; attempt++ {
		entry, err := s.messages.Get(ctx, leadID)
		if err != nil {
			if !errors.Is(err, jetstream.ErrKeyNotFound) {
				return storeFault("message read", err)
			}

			data, err := json.Marshal(stamped)
			if err != nil {
				return fmt.Errorf("failed to encode messages: %w", err)
			}
			if _, err := s.messages.Create(ctx, leadID, data); err != nil {
				if errors.Is(err, jetstream.ErrKeyExists) {
					continue // lost the creation race, re-read and append
				}

				return storeFault("message append", err)
			}

			return nil
		}

		var history []types.MessageRecord
		if err := json.Unmarshal(entry.Value(), &history); err != nil {
			return fmt.Errorf("corrupt message history: %w", err)
		}

		data, err := json.Marshal(append(history, stamped...))
		if err != nil {
			return fmt.Errorf("failed to encode messages: %w", err)
		}
		if _, err := s.messages.Update(ctx, leadID, data, entry.Revision()); err != nil {
			if isWrongLastSequence(err) {
				continue // concurrent append, re-read
			}

			return storeFault("message append", err)
		}

		return nil
	}

	return fmt.Errorf("message append contention exceeded %d attempts", appendRetries)
}

// Messages returns the lead's message history in append order.
func (s *Store) Messages(ctx context.Context, leadID string) ([]types.MessageRecord, error) {
	entry, err := s.messages.Get(ctx, leadID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, storeFault("message read", err)
	}

	var history []types.MessageRecord
	if err := json.Unmarshal(entry.Value(), &history); err != nil {
		return nil, fmt.Errorf("corrupt message history: %w", err)
	}

	return history, nil
}

// ListLeads returns lead/owner joins matching the filter, newest first.
func (s *Store) ListLeads(ctx context.Context, f types.LeadFilter) ([]types.Assignment, error) {
	leads, err := s.listCommittedLeads(ctx)
	if err != nil {
		return nil, err
	}

	owners, err := s.listOwners(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[types.OwnerID]types.Owner, len(owners))
	for _, o := range owners {
		byID[o.ID] = o
	}

	result := make([]types.Assignment, 0, len(leads))
	for _, lead := range leads {
		if f.OwnerID != 0 && lead.OwnerID != f.OwnerID {
			continue
		}
		if !f.From.IsZero() && lead.CreatedAt.Before(f.From) {
			continue
		}
		if !f.Until.IsZero() && !lead.CreatedAt.Before(f.Until) {
			continue
		}

		owner, ok := byID[lead.OwnerID]
		if !ok {
			owner = types.Owner{ID: lead.OwnerID}
		}
		if f.Tag != "" && !strings.Contains(strings.ToLower(owner.RoutingTag), strings.ToLower(f.Tag)) {
			continue
		}

		result = append(result, types.Assignment{Lead: lead, Owner: &owner})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Lead.CreatedAt.After(result[j].Lead.CreatedAt)
	})

	return result, nil
}

// LeadCounts returns the committed lead count per owner ID.
func (s *Store) LeadCounts(ctx context.Context) (map[types.OwnerID]int, error) {
	leads, err := s.listCommittedLeads(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[types.OwnerID]int)
	for _, lead := range leads {
		counts[lead.OwnerID]++
	}

	return counts, nil
}

func (s *Store) listCommittedLeads(ctx context.Context) ([]*types.Lead, error) {
	lister, err := s.leads.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, storeFault("lead list", err)
	}

	var leads []*types.Lead
	for key := range lister.Keys() {
		entry, err := s.leads.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue // deleted between list and get
			}

			return nil, storeFault("lead read", err)
		}

		var le leadEntry
		if err := json.Unmarshal(entry.Value(), &le); err != nil {
			return nil, fmt.Errorf("corrupt lead entry: %w", err)
		}
		if le.State == stateCommitted {
			leads = append(leads, le.Lead)
		}
	}

	return leads, nil
}

func (s *Store) listOwners(ctx context.Context) ([]types.Owner, error) {
	lister, err := s.roster.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, storeFault("roster list", err)
	}

	var owners []types.Owner
	for key := range lister.Keys() {
		entry, err := s.roster.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}

			return nil, storeFault("owner read", err)
		}

		var o types.Owner
		if err := json.Unmarshal(entry.Value(), &o); err != nil {
			return nil, fmt.Errorf("corrupt owner entry: %w", err)
		}
		owners = append(owners, o)
	}

	return owners, nil
}

// decodeCursor converts a stored cursor entry into the public cursor type,
// carrying the entry revision as the compare-and-swap token.
func decodeCursor(entry jetstream.KeyValueEntry) (*types.Cursor, error) {
	var ce cursorEntry
	if err := json.Unmarshal(entry.Value(), &ce); err != nil {
		return nil, fmt.Errorf("corrupt cursor entry: %w", err)
	}

	return &types.Cursor{Index: ce.Index, Revision: entry.Revision(), UpdatedAt: ce.UpdatedAt}, nil
}

// isWrongLastSequence reports whether err is a revision-mismatch rejection
// from a conditional KV write.
func isWrongLastSequence(err error) bool {
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}

	return false
}

// storeFault wraps infrastructure errors as ErrStoreUnavailable so callers
// can classify them with errors.Is.
func storeFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrStoreUnavailable, op, err)
}
