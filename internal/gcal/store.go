package gcal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/scheddy/scheddy/internal/event"
)

// defaultCalendarID is the calendar operated on when none is configured.
const defaultCalendarID = "primary"

// listWindow bounds unscoped listings. Google Calendar has no cheap "all
// events" call, so List covers one year back and one year ahead.
const listWindow = 365 * 24 * time.Hour

// Store implements event.Store on top of a Google Calendar.
type Store struct {
	svc        *calendar.Service
	calendarID string
}

var _ event.Store = (*Store)(nil)

// NewStore creates a Google Calendar backed store using the cached OAuth
// token. The zero calendarID means the account's primary calendar.
func NewStore(ctx context.Context, calendarID string) (*Store, error) {
	client, err := getHTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	if calendarID == "" {
		calendarID = defaultCalendarID
	}

	return &Store{
		svc:        svc,
		calendarID: calendarID,
	}, nil
}

// Create inserts the event. When a client reference id is set and an event
// with the same reference already exists, the existing event is returned
// instead of inserting a duplicate.
func (s *Store) Create(ctx context.Context, ev *event.Event) (*event.Event, error) {
	if ev.ClientReferenceID != "" {
		existing, err := s.GetByClientReferenceID(ctx, ev.ClientReferenceID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, event.ErrNotFound) {
			return nil, err
		}
	}

	gev := fromEvent(ev)
	if gev.Status == "" {
		gev.Status = string(event.StatusConfirmed)
	}

	created, err := s.svc.Events.Insert(s.calendarID, gev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return toEvent(created), nil
}

// GetByID retrieves an event by its calendar id.
func (s *Store) GetByID(ctx context.Context, id string) (*event.Event, error) {
	gev, err := s.svc.Events.Get(s.calendarID, id).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, event.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return toEvent(gev), nil
}

// GetByClientReferenceID retrieves the event carrying the given client
// reference id, using a private extended property filter.
func (s *Store) GetByClientReferenceID(ctx context.Context, ref string) (*event.Event, error) {
	res, err := s.svc.Events.List(s.calendarID).
		PrivateExtendedProperty(clientRefProperty + "=" + ref).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to look up client reference: %w", err)
	}
	if len(res.Items) == 0 {
		return nil, event.ErrNotFound
	}
	return toEvent(res.Items[0]), nil
}

// Update replaces the stored event's mutable fields with ev's.
func (s *Store) Update(ctx context.Context, ev *event.Event) (*event.Event, error) {
	existing, err := s.svc.Events.Get(s.calendarID, ev.ID).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, event.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	gev := fromEvent(ev)
	gev.Id = existing.Id
	gev.Sequence = existing.Sequence

	updated, err := s.svc.Events.Update(s.calendarID, ev.ID, gev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return toEvent(updated), nil
}

// Delete removes an event permanently. Returns false if it did not exist.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	err := s.svc.Events.Delete(s.calendarID, id).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	return true, nil
}

// Cancel marks an event cancelled and declines all attendees.
func (s *Store) Cancel(ctx context.Context, id string) (*event.Event, error) {
	existing, err := s.svc.Events.Get(s.calendarID, id).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, event.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	existing.Status = string(event.StatusCancelled)
	for _, a := range existing.Attendees {
		a.ResponseStatus = string(event.AttendeeDeclined)
	}

	updated, err := s.svc.Events.Update(s.calendarID, id, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}
	return toEvent(updated), nil
}

// List returns the events inside the default listing window, sorted by
// start time.
func (s *Store) List(ctx context.Context) ([]*event.Event, error) {
	now := time.Now().UTC()
	return s.ListRange(ctx, now.Add(-listWindow), now.Add(listWindow))
}

// ListRange returns events whose start falls inside [from, to].
func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]*event.Event, error) {
	call := s.svc.Events.List(s.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		ShowDeleted(true).
		OrderBy("startTime").
		Context(ctx)

	var events []*event.Event
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, gev := range page.Items {
			events = append(events, toEvent(gev))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// ListByAttendee returns events with an attendee matching the given email.
func (s *Store) ListByAttendee(ctx context.Context, email string) ([]*event.Event, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*event.Event
	for _, ev := range all {
		for _, a := range ev.Attendees {
			if strings.EqualFold(a.Email, email) {
				matched = append(matched, ev)
				break
			}
		}
	}
	return matched, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 || apiErr.Code == 410
	}
	return false
}
