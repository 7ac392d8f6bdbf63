package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator produces free text from a prompt. Implemented by llm.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// fallbackConfidence is the score assigned when the model output could not
// be parsed. Low enough that callers route the operation to a harmless
// search instead of a mutation.
const fallbackConfidence = 0.1

// timeLayouts are tried in order when coercing model-supplied timestamps.
// The model frequently drops the zone or the seconds, so parsing is
// permissive; an unparseable value leaves the field zero rather than
// failing the extraction.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Extractor converts raw command text into a typed Operation by prompting
// an external text-generation endpoint and parsing its reply.
type Extractor struct {
	generator Generator
	now       func() time.Time
}

// NewExtractor creates an Extractor backed by the given generator.
func NewExtractor(generator Generator) *Extractor {
	return &Extractor{
		generator: generator,
		now:       time.Now,
	}
}

// Extract turns rawText into an Operation. The caller guarantees rawText is
// non-empty. Endpoint failures are returned as errors; any malformation of
// the model's reply instead degrades to a low-confidence unknown Operation,
// so a reachable-but-unreliable model can never fail the pipeline.
func (e *Extractor) Extract(ctx context.Context, rawText string, reqContext map[string]string) (*Operation, error) {
	prompt := BuildPrompt(rawText, reqContext, e.now())

	reply, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("intent extraction failed: %w", err)
	}

	op := e.parseReply(reply, rawText)
	op.ID = uuid.NewString()
	op.RawText = rawText
	return op, nil
}

// parseReply parses the model's free-text reply into an Operation, falling
// back to an unknown Operation on any structural problem.
func (e *Extractor) parseReply(reply, rawText string) *Operation {
	jsonSpan, ok := firstJSONObject(reply)
	if !ok {
		return e.fallback(rawText)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonSpan), &raw); err != nil {
		return e.fallback(rawText)
	}

	op := &Operation{
		Kind:       ParseKind(stringField(raw, "operation")),
		Confidence: clamp01(floatField(raw, "confidence")),
		Intent:     stringField(raw, "intent"),
		Entities:   stringSlice(raw["entities"]),
		Metadata:   map[string]string{"model_reply_bytes": fmt.Sprintf("%d", len(reply))},
	}

	if evRaw, ok := raw["event"].(map[string]any); ok {
		draft := &Draft{
			Title:       stringField(evRaw, "title"),
			Description: stringField(evRaw, "description"),
			Location:    stringField(evRaw, "location"),
		}
		if t, ok := parseTime(stringField(evRaw, "start")); ok {
			draft.Start = t
		}
		if t, ok := parseTime(stringField(evRaw, "end")); ok {
			draft.End = t
		}
		op.Draft = draft
	}

	return op
}

// fallback synthesizes the degraded Operation used whenever the model's
// reply cannot be parsed. The draft times keep downstream handlers usable:
// a later "save it anyway" still has a plausible one-hour window.
func (e *Extractor) fallback(rawText string) *Operation {
	now := e.now()
	return &Operation{
		Kind:       KindUnknown,
		Confidence: fallbackConfidence,
		Draft: &Draft{
			Title:       "Parsed Event",
			Description: rawText,
			Start:       now.Add(time.Hour),
			End:         now.Add(2 * time.Hour),
		},
		Metadata: map[string]string{"fallback": "true"},
	}
}

// firstJSONObject returns the first balanced {...} span in s. Models often
// wrap the requested JSON in prose or markdown fences; scanning for the
// balanced span recovers it. String literals and escapes are honored so
// braces inside values do not break the balance count.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err == nil {
			return f
		}
	}
	return 0
}

// stringSlice extracts the string elements of a decoded JSON array,
// silently dropping empty and non-string elements. Order is preserved and
// duplicates are allowed.
func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, el := range arr {
		if s, ok := el.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
