package schedule

import (
	"time"

	"github.com/scheddy/scheddy/internal/event"
)

// Availability is the result of a conflict check against a candidate
// interval. It is a transient computation and is never persisted.
type Availability struct {
	Available     bool           `json:"available"`
	ConflictCount int            `json:"conflictCount"`
	Conflicts     []ConflictInfo `json:"conflictingEvents,omitempty"`
}

// ConflictInfo identifies an overlapping event for caller display.
type ConflictInfo struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Conflicts returns the events overlapping the half-open interval
// [start, end). Back-to-back events do not overlap: an event ending exactly
// at start, or starting exactly at end, is not a conflict. Cancelled events
// and the event with excludeID are ignored.
//
// The function is total over any well-formed interval; inverted or
// zero-length intervals simply match nothing.
func Conflicts(start, end time.Time, events []*event.Event, excludeID string) []ConflictInfo {
	var out []ConflictInfo
	for _, ev := range events {
		if ev.Status == event.StatusCancelled {
			continue
		}
		if excludeID != "" && ev.ID == excludeID {
			continue
		}
		if ev.Start.Before(end) && ev.End.After(start) {
			out = append(out, ConflictInfo{
				ID:    ev.ID,
				Title: ev.Title,
				Start: ev.Start,
				End:   ev.End,
			})
		}
	}
	return out
}

// CheckAvailability reports whether the interval [start, end) is free of
// conflicts against the given event set.
func CheckAvailability(start, end time.Time, events []*event.Event, excludeID string) Availability {
	conflicts := Conflicts(start, end, events, excludeID)
	return Availability{
		Available:     len(conflicts) == 0,
		ConflictCount: len(conflicts),
		Conflicts:     conflicts,
	}
}
