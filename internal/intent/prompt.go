package intent

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// promptTemplate instructs the model to answer with a single JSON object.
// The current time is embedded so relative expressions ("tomorrow", "next
// Tuesday") have an anchor; context pairs let callers carry session state
// such as a previously selected event id.
const promptTemplate = `You are a calendar assistant. Convert the user's command into a single JSON object and nothing else.

The JSON object must have this shape:
{
  "operation": one of "create_event", "update_event", "delete_event", "find_event", "check_availability", "suggest_meeting_time",
  "confidence": a number between 0.0 and 1.0,
  "intent": a short summary of what the user wants,
  "entities": an array of strings naming the people, places and times mentioned,
  "event": {
    "title": string,
    "description": string,
    "location": string,
    "start": RFC3339 timestamp,
    "end": RFC3339 timestamp
  }
}

Omit event fields you cannot determine. Do not invent attendees or times.

Current date and time: %s
%sUser command: %s

JSON:`

// BuildPrompt renders the extraction prompt for the given command text and
// optional context. The rendering is deterministic: context keys are
// serialized in sorted order.
func BuildPrompt(rawText string, context map[string]string, now time.Time) string {
	var ctxSection string
	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString("Context:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, context[k])
		}
		ctxSection = b.String()
	}

	return fmt.Sprintf(promptTemplate, now.Format(time.RFC3339), ctxSection, rawText)
}
