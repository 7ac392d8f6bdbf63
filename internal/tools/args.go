package tools

import (
	"fmt"
	"time"
)

// argTimeLayouts mirrors the permissive parsing used during intent
// extraction: argument values may be model output that dropped the zone or
// the seconds.
var argTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// argString returns the string value of an argument, or "" when absent or
// of another type.
func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// argPresent reports whether the argument holds a non-empty string.
func argPresent(args map[string]any, key string) bool {
	return argString(args, key) != ""
}

// argTime coerces an argument to a time. The value may already be a
// time.Time (when the orchestrator built the argument map from a parsed
// draft) or a string in one of the tolerated layouts.
func argTime(args map[string]any, key string) (time.Time, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("%s is required", key)
		}
		return t, nil
	case string:
		if t == "" {
			return time.Time{}, fmt.Errorf("%s is required", key)
		}
		for _, layout := range argTimeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid %s format: %q", key, t)
	}
	return time.Time{}, fmt.Errorf("invalid %s type: %T", key, v)
}

// argOptionalTime is argTime for optional arguments: an absent or empty
// value yields a zero time and no error.
func argOptionalTime(args map[string]any, key string) (time.Time, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	if s, isStr := v.(string); isStr && s == "" {
		return time.Time{}, nil
	}
	if t, isTime := v.(time.Time); isTime && t.IsZero() {
		return time.Time{}, nil
	}
	return argTime(args, key)
}

// argInt coerces a numeric argument. JSON decoding yields float64; model
// output may yield strings.
func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
