package schedule

import (
	"time"

	"github.com/scheddy/scheddy/internal/event"
)

// Slot is a free time range large enough to hold a meeting of the requested
// duration.
type Slot struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"-"`
}

// slotStep is the granularity at which candidate slots advance.
const slotStep = 15 * time.Minute

// SuggestSlots scans the window [from, to] for gaps of at least duration in
// the given event set and returns up to limit candidate slots. Cancelled
// events do not block a slot. A limit of 0 means no cap.
func SuggestSlots(from, to time.Time, duration time.Duration, events []*event.Event, limit int) []Slot {
	if duration <= 0 || !from.Before(to) {
		return nil
	}

	var slots []Slot
	current := from
	for !current.Add(duration).After(to) {
		slotEnd := current.Add(duration)

		conflicts := Conflicts(current, slotEnd, events, "")
		if len(conflicts) == 0 {
			slots = append(slots, Slot{Start: current, End: slotEnd, Duration: duration})
			if limit > 0 && len(slots) >= limit {
				return slots
			}
			current = current.Add(slotStep)
			continue
		}

		// Jump past the busy interval that blocked this candidate.
		next := current.Add(slotStep)
		for _, c := range conflicts {
			if c.End.After(current) && c.End.After(next) {
				next = c.End
			}
		}
		current = next
	}
	return slots
}
