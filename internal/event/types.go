package event

import (
	"time"
)

// Status represents the lifecycle state of a calendar event.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

// AttendeeStatus represents an attendee's response to an event invitation.
type AttendeeStatus string

const (
	AttendeeNeedsAction AttendeeStatus = "needsAction"
	AttendeeAccepted    AttendeeStatus = "accepted"
	AttendeeDeclined    AttendeeStatus = "declined"
	AttendeeTentative   AttendeeStatus = "tentative"
)

// Attendee represents a participant of a calendar event.
type Attendee struct {
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName,omitempty"`
	Status      AttendeeStatus `json:"status"`
	Optional    bool           `json:"optional,omitempty"`
}

// Event represents a calendar event.
//
// ClientReferenceID is an optional caller-supplied key used for idempotent
// creation: submitting a second create with the same reference id returns
// the previously created event instead of duplicating it.
type Event struct {
	ID                string     `json:"id"`
	ClientReferenceID string     `json:"clientReferenceId,omitempty"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Location          string     `json:"location,omitempty"`
	Start             time.Time  `json:"start"`
	End               time.Time  `json:"end"`
	Status            Status     `json:"status"`
	Attendees         []Attendee `json:"attendees,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the event. Stores hand out clones so callers
// cannot mutate shared state.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Attendees != nil {
		clone.Attendees = make([]Attendee, len(e.Attendees))
		copy(clone.Attendees, e.Attendees)
	}
	return &clone
}

// ValidStatus reports whether s is one of the known event statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusConfirmed, StatusTentative, StatusCancelled:
		return true
	}
	return false
}
