package intent

import (
	"time"
)

// Kind classifies a parsed natural-language command.
type Kind string

const (
	KindCreateEvent        Kind = "create_event"
	KindUpdateEvent        Kind = "update_event"
	KindDeleteEvent        Kind = "delete_event"
	KindFindEvent          Kind = "find_event"
	KindCheckAvailability  Kind = "check_availability"
	KindSuggestMeetingTime Kind = "suggest_meeting_time"
	KindUnknown            Kind = "unknown"
)

// ParseKind coerces a raw string to a Kind, case-sensitively. Anything that
// is not an exact match degrades to KindUnknown.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindCreateEvent, KindUpdateEvent, KindDeleteEvent, KindFindEvent,
		KindCheckAvailability, KindSuggestMeetingTime:
		return Kind(s)
	}
	return KindUnknown
}

// Draft is the proposed event payload extracted from a command. It is
// partially populated and never assumed complete; zero times mean the model
// provided nothing usable for that field.
type Draft struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start,omitzero"`
	End         time.Time `json:"end,omitzero"`
}

// Operation is the structured, confidence-scored representation of a parsed
// natural-language command. It is created once per request by the Extractor
// and never mutated afterwards.
type Operation struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	Draft      *Draft            `json:"event,omitempty"`
	Confidence float64           `json:"confidence"`
	RawText    string            `json:"rawText"`
	Intent     string            `json:"intent,omitempty"`
	Entities   []string          `json:"entities,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
