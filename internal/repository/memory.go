package repository

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// MemoryStore keeps every record in process memory. It backs the "memory"
// store driver and the registry tests.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

// InTx holds the store lock for the whole unit and runs fn on a copy of the
// state; the copy replaces the live state only when fn succeeds.
func (s *MemoryStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	draft := s.state.clone()
	if err := fn(draft); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ListEvents(ctx)
}

func (s *MemoryStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetEvent(ctx, id)
}

func (s *MemoryStore) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetEventBySlug(ctx, slug)
}

func (s *MemoryStore) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.GetEvent(ctx, id)
}

func (s *MemoryStore) CreateEvent(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateEvent(ctx, e)
}

func (s *MemoryStore) CountParticipants(ctx context.Context, eventID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CountParticipants(ctx, eventID)
}

func (s *MemoryStore) ListParticipants(ctx context.Context, q model.ParticipantQuery) ([]model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ListParticipants(ctx, q)
}

func (s *MemoryStore) GetParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetParticipant(ctx, id)
}

func (s *MemoryStore) LockParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	return s.GetParticipant(ctx, id)
}

func (s *MemoryStore) GetParticipantByEmail(ctx context.Context, eventID, email string) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetParticipantByEmail(ctx, eventID, email)
}

func (s *MemoryStore) CreateParticipant(ctx context.Context, p *model.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateParticipant(ctx, p)
}

func (s *MemoryStore) SetCheckIn(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SetCheckIn(ctx, id, at)
}

// memState is the unsynchronised record set; MemoryStore guards it.
// Records are stored by value and copied on the way out.
type memState struct {
	events       map[string]model.Event
	slugs        map[string]string
	participants map[int64]model.Participant
	emails       map[string]int64
	nextID       int64
}

func newMemState() *memState {
	return &memState{
		events:       map[string]model.Event{},
		slugs:        map[string]string{},
		participants: map[int64]model.Participant{},
		emails:       map[string]int64{},
	}
}

func (m *memState) clone() *memState {
	return &memState{
		events:       maps.Clone(m.events),
		slugs:        maps.Clone(m.slugs),
		participants: maps.Clone(m.participants),
		emails:       maps.Clone(m.emails),
		nextID:       m.nextID,
	}
}

func emailKey(eventID, email string) string {
	return eventID + "\x00" + email
}

func copyEvent(e model.Event) *model.Event {
	if e.Details != nil {
		d := *e.Details
		e.Details = &d
	}
	if e.MaxParticipants != nil {
		n := *e.MaxParticipants
		e.MaxParticipants = &n
	}
	return &e
}

func copyParticipant(p model.Participant) *model.Participant {
	if p.CheckInAt != nil {
		at := *p.CheckInAt
		p.CheckInAt = &at
	}
	return &p
}

func (m *memState) ListEvents(ctx context.Context) ([]model.Event, error) {
	events := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		events = append(events, *copyEvent(e))
	}
	slices.SortFunc(events, func(a, b model.Event) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return events, nil
}

func (m *memState) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyEvent(e), nil
}

func (m *memState) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	id, ok := m.slugs[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetEvent(ctx, id)
}

func (m *memState) LockEvent(ctx context.Context, id string) (*model.Event, error) {
	return m.GetEvent(ctx, id)
}

func (m *memState) CreateEvent(ctx context.Context, e *model.Event) error {
	if _, taken := m.slugs[e.Slug]; taken {
		return ErrDuplicate
	}
	if _, taken := m.events[e.ID]; taken {
		return ErrDuplicate
	}
	m.events[e.ID] = *copyEvent(*e)
	m.slugs[e.Slug] = e.ID
	return nil
}

func (m *memState) CountParticipants(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, p := range m.participants {
		if p.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (m *memState) ListParticipants(ctx context.Context, q model.ParticipantQuery) ([]model.Participant, error) {
	matched := []model.Participant{}
	for _, p := range m.participants {
		if p.EventID != q.EventID {
			continue
		}
		if q.Query != "" && !strings.Contains(p.Name, q.Query) {
			continue
		}
		matched = append(matched, *copyParticipant(p))
	}
	slices.SortFunc(matched, func(a, b model.Participant) int {
		if c := b.SubscribedAt.Compare(a.SubscribedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	start := min(q.Offset(), len(matched))
	end := min(start+q.Limit, len(matched))
	return matched[start:end], nil
}

func (m *memState) GetParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	p, ok := m.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyParticipant(p), nil
}

func (m *memState) LockParticipant(ctx context.Context, id int64) (*model.Participant, error) {
	return m.GetParticipant(ctx, id)
}

func (m *memState) GetParticipantByEmail(ctx context.Context, eventID, email string) (*model.Participant, error) {
	id, ok := m.emails[emailKey(eventID, email)]
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetParticipant(ctx, id)
}

func (m *memState) CreateParticipant(ctx context.Context, p *model.Participant) error {
	key := emailKey(p.EventID, p.Email)
	if _, taken := m.emails[key]; taken {
		return ErrDuplicate
	}
	m.nextID++
	p.ID = m.nextID
	m.participants[p.ID] = *copyParticipant(*p)
	m.emails[key] = p.ID
	return nil
}

func (m *memState) SetCheckIn(ctx context.Context, id int64, at time.Time) error {
	p, ok := m.participants[id]
	if !ok {
		return ErrNotFound
	}
	if p.CheckInAt != nil {
		return ErrConflict
	}
	p.CheckInAt = &at
	m.participants[id] = p
	return nil
}
