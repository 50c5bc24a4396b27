// Package values converts loosely typed configuration values.
// TOML decodes integers as int64 and arrays as []any; these helpers accept
// those along with the native Go types callers set directly.
package values

import (
	"strconv"
	"strings"
	"time"
)

// String returns v as a string.
func String(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Int returns v as an int.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	default:
		return 0
	}
}

// Float returns v as a float64.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	default:
		return 0
	}
}

// Duration returns v as a duration. Strings use time.ParseDuration; bare
// numbers are seconds.
func Duration(v any) time.Duration {
	switch d := v.(type) {
	case time.Duration:
		return d
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(d))
		if err != nil {
			return 0
		}
		return parsed
	case int, int64, float64:
		return time.Duration(Float(d) * float64(time.Second))
	default:
		return 0
	}
}

// Bool returns v as a bool.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(b))
		return parsed
	default:
		return false
	}
}

// StringSlice returns v as a []string. A comma-separated string is split.
func StringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case string:
		var result []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
		return result
	default:
		return nil
	}
}
