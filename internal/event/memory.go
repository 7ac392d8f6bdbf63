package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation. It is the default
// backend for the CLI and for tests, and is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*Event
	byRef  map[string]string // client reference id -> event id
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string]*Event),
		byRef:  make(map[string]string),
	}
}

// Create persists a new event, assigning an id when the caller supplied none.
// Creation is idempotent per ClientReferenceID: a repeated reference id
// returns the existing event unchanged.
func (s *MemoryStore) Create(_ context.Context, ev *Event) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ClientReferenceID != "" {
		if id, ok := s.byRef[ev.ClientReferenceID]; ok {
			return s.events[id].Clone(), nil
		}
	}

	stored := ev.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = StatusConfirmed
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.events[stored.ID] = stored
	if stored.ClientReferenceID != "" {
		s.byRef[stored.ClientReferenceID] = stored.ID
	}
	return stored.Clone(), nil
}

// GetByID returns the event with the given id.
func (s *MemoryStore) GetByID(_ context.Context, id string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ev.Clone(), nil
}

// GetByClientReferenceID returns the event created with the given client
// reference id.
func (s *MemoryStore) GetByClientReferenceID(_ context.Context, refID string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRef[refID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.events[id].Clone(), nil
}

// Update replaces the stored event with the same id.
func (s *MemoryStore) Update(_ context.Context, ev *Event) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[ev.ID]
	if !ok {
		return nil, ErrNotFound
	}

	stored := ev.Clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()

	// Keep the reference index consistent if the caller changed it.
	if existing.ClientReferenceID != stored.ClientReferenceID {
		if existing.ClientReferenceID != "" {
			delete(s.byRef, existing.ClientReferenceID)
		}
		if stored.ClientReferenceID != "" {
			s.byRef[stored.ClientReferenceID] = stored.ID
		}
	}

	s.events[stored.ID] = stored
	return stored.Clone(), nil
}

// Delete removes the event with the given id.
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return false, nil
	}
	if ev.ClientReferenceID != "" {
		delete(s.byRef, ev.ClientReferenceID)
	}
	delete(s.events, id)
	return true, nil
}

// List returns all stored events ordered by start time.
func (s *MemoryStore) List(_ context.Context) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(*Event) bool { return true }), nil
}

// ListRange returns events whose start time falls within [from, to].
func (s *MemoryStore) ListRange(_ context.Context, from, to time.Time) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(ev *Event) bool {
		return !ev.Start.Before(from) && !ev.Start.After(to)
	}), nil
}

// ListByAttendee returns events that include the given attendee email.
func (s *MemoryStore) ListByAttendee(_ context.Context, email string) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(ev *Event) bool {
		for _, att := range ev.Attendees {
			if att.Email == email {
				return true
			}
		}
		return false
	}), nil
}

// Cancel marks the event cancelled and declines every attendee. The cascade
// lives here so that every caller of the store observes the same invariant:
// a cancelled event never has attendees in a non-declined state.
func (s *MemoryStore) Cancel(_ context.Context, id string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}

	ev.Status = StatusCancelled
	for i := range ev.Attendees {
		ev.Attendees[i].Status = AttendeeDeclined
	}
	ev.UpdatedAt = time.Now().UTC()
	return ev.Clone(), nil
}

// snapshot returns clones of all events matching the filter, ordered by
// start time. Callers must hold at least the read lock.
func (s *MemoryStore) snapshot(match func(*Event) bool) []*Event {
	var out []*Event
	for _, ev := range s.events {
		if match(ev) {
			out = append(out, ev.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
