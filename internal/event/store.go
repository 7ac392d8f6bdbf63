package event

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by store lookups when no event matches the given id.
var ErrNotFound = errors.New("event not found")

// Store is the persistence contract for calendar events.
//
// Implementations provide per-call atomicity only; read-modify-write
// sequences performed by callers are not transactional.
type Store interface {
	// Create persists a new event. If the event carries a ClientReferenceID
	// that is already present, the previously created event is returned and
	// no new event is stored.
	Create(ctx context.Context, ev *Event) (*Event, error)

	// GetByID returns the event with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByClientReferenceID returns the event with the given client
	// reference id, or ErrNotFound.
	GetByClientReferenceID(ctx context.Context, refID string) (*Event, error)

	// Update replaces the stored event with the same id, or ErrNotFound.
	Update(ctx context.Context, ev *Event) (*Event, error)

	// Delete removes the event with the given id. It reports whether an
	// event was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// List returns all stored events.
	List(ctx context.Context) ([]*Event, error)

	// ListRange returns events whose start time falls within [from, to].
	ListRange(ctx context.Context, from, to time.Time) ([]*Event, error)

	// ListByAttendee returns events that include the given attendee email.
	ListByAttendee(ctx context.Context, email string) ([]*Event, error)

	// Cancel marks the event cancelled and declines every attendee.
	// Returns ErrNotFound when no event matches the id.
	Cancel(ctx context.Context, id string) (*Event, error)
}
