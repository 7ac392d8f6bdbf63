package assistant

import (
	"fmt"
	"math/rand/v2"

	"github.com/scheddy/scheddy/internal/intent"
	"github.com/scheddy/scheddy/internal/schedule"
	"github.com/scheddy/scheddy/internal/tools"
)

// successPhrases maps an operation kind to a set of equivalent confirmation
// phrasings. One member is picked at random per response; the choice
// carries no semantic weight, so tests assert membership, not equality.
var successPhrases = map[intent.Kind][]string{
	intent.KindCreateEvent: {
		"Done, %q is on the books.",
		"All set: %q is on your calendar.",
		"%q has been scheduled.",
	},
	intent.KindUpdateEvent: {
		"I've updated %q.",
		"Done, %q now reflects your changes.",
		"%q has been updated.",
	},
	intent.KindDeleteEvent: {
		"I've cancelled %q.",
		"%q is cancelled.",
		"Done, %q has been removed from your schedule.",
	},
	intent.KindFindEvent: {
		"I found %d matching events.",
		"There are %d events matching your search.",
		"Your search turned up %d events.",
	},
	intent.KindSuggestMeetingTime: {
		"I found %d possible times.",
		"There are %d open slots that would work.",
		"%d time slots are available.",
	},
}

// availablePhrases and busyPhrases are the equivalence sets for
// availability checks.
var (
	availablePhrases = []string{
		"That time is free.",
		"You're available then.",
		"No conflicts, that slot is open.",
	}
	busyPhrases = []string{
		"That time conflicts with %d existing events.",
		"You're busy then: %d events overlap.",
		"That slot overlaps %d events on your calendar.",
	}
)

// Synthesizer converts a completed operation and its dispatch outcome into
// a user-facing confirmation message.
type Synthesizer struct {
	pick func(n int) int
}

// NewSynthesizer creates a Synthesizer with random phrase selection.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{pick: rand.IntN}
}

// Synthesize produces the confirmation message for a successful dispatch.
// The shape of resp.Result determines the detail embedded in the phrase.
func (s *Synthesizer) Synthesize(op *intent.Operation, result any) string {
	switch r := result.(type) {
	case *tools.SaveResult:
		msg := s.phrase(intent.KindCreateEvent, r.Event.Title)
		if len(r.Warnings) > 0 {
			msg = fmt.Sprintf("%s Heads up: it %s.", msg, r.Warnings[0])
		}
		return msg
	case *tools.UpdateResult:
		return s.phrase(intent.KindUpdateEvent, r.Event.Title)
	case *tools.CancelResult:
		return s.phrase(intent.KindDeleteEvent, r.Event.Title)
	case *tools.FindResult:
		return s.phrase(intent.KindFindEvent, r.Count)
	case *tools.SuggestResult:
		return s.phrase(intent.KindSuggestMeetingTime, r.Count)
	case *schedule.Availability:
		if r.Available {
			return availablePhrases[s.pick(len(availablePhrases))]
		}
		return fmt.Sprintf(busyPhrases[s.pick(len(busyPhrases))], r.ConflictCount)
	}
	return "Done."
}

// SynthesizeFailure produces the message for a failed dispatch, embedding
// the handler's detail. Failure messages are deterministic.
func (s *Synthesizer) SynthesizeFailure(op *intent.Operation, detail string) string {
	return fmt.Sprintf("I couldn't complete that request: %s", detail)
}

func (s *Synthesizer) phrase(kind intent.Kind, detail any) string {
	set := successPhrases[kind]
	return fmt.Sprintf(set[s.pick(len(set))], detail)
}

// SuccessPhrases returns the phrase equivalence set for a kind. Exposed so
// tests can assert membership instead of exact equality.
func SuccessPhrases(kind intent.Kind) []string {
	return successPhrases[kind]
}

// AvailabilityPhrases returns the phrase sets for availability checks.
func AvailabilityPhrases(available bool) []string {
	if available {
		return availablePhrases
	}
	return busyPhrases
}
