package testing

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// Lead entry states inside MemStore.
const (
	memPending   = "pending"
	memCommitted = "committed"
)

// memLead is a single contact's slot in the lead map. Entry-level locking
// keeps the reserve/commit/abort handshake atomic per contact.
type memLead struct {
	mu        sync.Mutex
	state     string
	revision  uint64
	createdAt time.Time
	lead      *types.Lead
}

// MemStore is an in-memory types.Store with CAS semantics faithful to the
// durable backends: Reserve is an atomic claim per contact and AdvanceCursor
// rejects stale revisions. Safe for concurrent use, which makes it suitable
// for the router's race tests.
//
// MemStore keeps everything in process memory and is intended for tests and
// examples only.
type MemStore struct {
	leads *xsync.Map[string, *memLead]
	rev   atomic.Uint64

	mu          sync.Mutex
	owners      map[types.OwnerID]types.Owner
	messages    map[string][]types.MessageRecord
	cursorIndex uint64
	cursorRev   uint64
	cursorTime  time.Time

	// PendingGrace mirrors the durable stores' stale-reservation reclaim
	// window. Zero keeps pending reservations honored indefinitely.
	PendingGrace time.Duration
}

// Compile-time assertion that MemStore implements the full contract.
var _ types.Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
//
// Returns:
//   - *MemStore: Ready store with an unset cursor (created at 0 on first read)
func NewMemStore() *MemStore {
	s := &MemStore{
		leads:    xsync.NewMap[string, *memLead](),
		owners:   make(map[types.OwnerID]types.Owner),
		messages: make(map[string][]types.MessageRecord),
	}
	s.cursorRev = 1

	return s
}

// SeedOwners replaces the roster with the given owners. Test convenience.
func (s *MemStore) SeedOwners(owners ...types.Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owners = make(map[types.OwnerID]types.Owner, len(owners))
	for _, o := range owners {
		s.owners[o.ID] = o
	}
}

// CursorIndex returns the current cursor index. Test convenience.
func (s *MemStore) CursorIndex() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursorIndex
}

// Resolve looks up the committed lead for contactID.
func (s *MemStore) Resolve(_ context.Context, contactID string) (*types.Assignment, error) {
	entry, ok := s.leads.Load(contactID)
	if !ok {
		return nil, types.ErrLeadNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state == memPending {
		if s.PendingGrace > 0 && time.Since(entry.createdAt) > s.PendingGrace {
			entry.revision = 0 // invalidate outstanding reservation
			s.leads.Delete(contactID)

			return nil, types.ErrLeadNotFound
		}

		return nil, types.ErrContactPending
	}

	lead := entry.lead

	s.mu.Lock()
	owner, ok := s.owners[lead.OwnerID]
	s.mu.Unlock()
	if !ok {
		owner = types.Owner{ID: lead.OwnerID}
	}

	return &types.Assignment{Lead: lead, Owner: &owner}, nil
}

// Reserve claims contactID for a new-lead assignment.
func (s *MemStore) Reserve(_ context.Context, contactID string) (*types.Reservation, error) {
	now := time.Now().UTC()
	candidate := &memLead{state: memPending, revision: s.rev.Add(1), createdAt: now}

	actual, loaded := s.leads.LoadOrStore(contactID, candidate)
	if !loaded {
		return &types.Reservation{ContactID: contactID, Revision: candidate.revision, CreatedAt: now}, nil
	}

	actual.mu.Lock()
	defer actual.mu.Unlock()

	if actual.state == memCommitted {
		return nil, types.ErrDuplicateContact
	}

	return nil, types.ErrContactPending
}

// Commit finalizes a reservation with the committed lead.
func (s *MemStore) Commit(_ context.Context, res *types.Reservation, lead *types.Lead) error {
	entry, ok := s.leads.Load(res.ContactID)
	if !ok {
		return types.ErrDuplicateContact
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state != memPending || entry.revision != res.Revision {
		return types.ErrDuplicateContact
	}

	entry.state = memCommitted
	entry.lead = lead
	entry.revision = s.rev.Add(1)

	return nil
}

// Abort releases a reservation without committing a lead.
func (s *MemStore) Abort(_ context.Context, res *types.Reservation) error {
	entry, ok := s.leads.Load(res.ContactID)
	if !ok {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state == memPending && entry.revision == res.Revision {
		entry.revision = 0
		s.leads.Delete(res.ContactID)
	}

	return nil
}

// Cursor returns the rotation cursor and its CAS revision.
func (s *MemStore) Cursor(_ context.Context) (*types.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &types.Cursor{Index: s.cursorIndex, Revision: s.cursorRev, UpdatedAt: s.cursorTime}, nil
}

// AdvanceCursor commits the next cursor value at the observed revision.
func (s *MemStore) AdvanceCursor(_ context.Context, observed *types.Cursor, next uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if observed.Revision != s.cursorRev {
		return types.ErrCursorConflict
	}

	s.cursorIndex = next
	s.cursorRev++
	s.cursorTime = time.Now().UTC()

	return nil
}

// ActiveOwners returns the active owners ordered by ID ascending.
func (s *MemStore) ActiveOwners(_ context.Context) ([]types.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]types.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		if o.Active {
			active = append(active, o)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	return active, nil
}

// Owner returns the owner with the given ID, active or not.
func (s *MemStore) Owner(_ context.Context, id types.OwnerID) (*types.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.owners[id]
	if !ok {
		return nil, types.ErrOwnerNotFound
	}

	return &o, nil
}

// PutOwner creates or replaces an owner record.
func (s *MemStore) PutOwner(_ context.Context, o types.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owners[o.ID] = o

	return nil
}

// SetOwnerActive toggles an owner's participation in rotation.
func (s *MemStore) SetOwnerActive(_ context.Context, id types.OwnerID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.owners[id]
	if !ok {
		return types.ErrOwnerNotFound
	}
	o.Active = active
	s.owners[id] = o

	return nil
}

// AppendMessages appends message records to the lead's history.
func (s *MemStore) AppendMessages(_ context.Context, leadID string, msgs []types.MessageRecord) error {
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range msgs {
		m.LeadID = leadID
		if m.Origin == "" {
			m.Origin = types.OriginContact
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		s.messages[leadID] = append(s.messages[leadID], m)
	}

	return nil
}

// Messages returns the lead's message history in append order.
func (s *MemStore) Messages(_ context.Context, leadID string) ([]types.MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.messages[leadID]
	out := make([]types.MessageRecord, len(history))
	copy(out, history)

	return out, nil
}

// ListLeads returns lead/owner joins matching the filter, newest first.
func (s *MemStore) ListLeads(_ context.Context, f types.LeadFilter) ([]types.Assignment, error) {
	var leads []*types.Lead
	s.leads.Range(func(_ string, entry *memLead) bool {
		entry.mu.Lock()
		if entry.state == memCommitted {
			leads = append(leads, entry.lead)
		}
		entry.mu.Unlock()

		return true
	})

	s.mu.Lock()
	owners := make(map[types.OwnerID]types.Owner, len(s.owners))
	for id, o := range s.owners {
		owners[id] = o
	}
	s.mu.Unlock()

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

		owner, ok := owners[lead.OwnerID]
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
func (s *MemStore) LeadCounts(_ context.Context) (map[types.OwnerID]int, error) {
	counts := make(map[types.OwnerID]int)
	s.leads.Range(func(_ string, entry *memLead) bool {
		entry.mu.Lock()
		if entry.state == memCommitted {
			counts[entry.lead.OwnerID]++
		}
		entry.mu.Unlock()

		return true
	})

	return counts, nil
}
