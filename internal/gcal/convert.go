package gcal

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/scheddy/scheddy/internal/event"
)

// clientRefProperty is the private extended property carrying the client
// reference id used for idempotent creation.
const clientRefProperty = "scheddyClientRef"

// toEvent converts a Google Calendar event into the domain representation.
func toEvent(gev *calendar.Event) *event.Event {
	if gev == nil {
		return &event.Event{}
	}
	ev := &event.Event{
		ID:          gev.Id,
		Title:       gev.Summary,
		Description: gev.Description,
		Location:    gev.Location,
		Status:      event.Status(gev.Status),
	}
	if !event.ValidStatus(ev.Status) {
		ev.Status = event.StatusConfirmed
	}

	ev.Start = parseEventTime(gev.Start)
	ev.End = parseEventTime(gev.End)

	if t, err := time.Parse(time.RFC3339, gev.Created); err == nil {
		ev.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, gev.Updated); err == nil {
		ev.UpdatedAt = t
	}

	for _, a := range gev.Attendees {
		ev.Attendees = append(ev.Attendees, event.Attendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Status:      attendeeStatus(a.ResponseStatus),
			Optional:    a.Optional,
		})
	}

	if gev.ExtendedProperties != nil {
		ev.ClientReferenceID = gev.ExtendedProperties.Private[clientRefProperty]
	}

	return ev
}

// fromEvent converts a domain event into the Google Calendar wire shape.
func fromEvent(ev *event.Event) *calendar.Event {
	gev := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Status:      string(ev.Status),
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}

	for _, a := range ev.Attendees {
		gev.Attendees = append(gev.Attendees, &calendar.EventAttendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: string(a.Status),
			Optional:       a.Optional,
		})
	}

	if ev.ClientReferenceID != "" {
		gev.ExtendedProperties = &calendar.EventExtendedProperties{
			Private: map[string]string{
				clientRefProperty: ev.ClientReferenceID,
			},
		}
	}

	return gev
}

// parseEventTime handles both timed and all-day event boundaries.
func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

func attendeeStatus(responseStatus string) event.AttendeeStatus {
	switch s := event.AttendeeStatus(responseStatus); s {
	case event.AttendeeAccepted, event.AttendeeDeclined, event.AttendeeTentative, event.AttendeeNeedsAction:
		return s
	default:
		return event.AttendeeNeedsAction
	}
}
