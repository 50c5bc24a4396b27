package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// validator walks decoded JSON and records the first shape violation.
// Once err is set every accessor returns zero values.
type validator struct {
	raw string
	err *domain.ValidationError
}

func (v *validator) fail(path, reason string) {
	if v.err == nil {
		v.err = &domain.ValidationError{Field: path, Reason: reason, Raw: v.raw}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	if strings.HasPrefix(key, "[") {
		return path + key
	}
	return path + "." + key
}

func (v *validator) object(val any, path string) map[string]any {
	if v.err != nil {
		return nil
	}
	obj, ok := val.(map[string]any)
	if !ok {
		v.fail(path, "expected object, got "+kindOf(val))
		return nil
	}
	return obj
}

func (v *validator) present(obj map[string]any, path, key string) (any, bool) {
	if v.err != nil {
		return nil, false
	}
	val, ok := obj[key]
	if !ok {
		v.fail(join(path, key), "missing required key")
		return nil, false
	}
	return val, true
}

// str reads a required string. Numbers and booleans are accepted and
// formatted; null reads as the empty string.
func (v *validator) str(obj map[string]any, path, key string) string {
	val, ok := v.present(obj, path, key)
	if !ok {
		return ""
	}
	s, ok := scalarString(val)
	if !ok {
		v.fail(join(path, key), "expected string, got "+kindOf(val))
		return ""
	}
	return s
}

// list reads a required array. null reads as an empty array.
func (v *validator) list(obj map[string]any, path, key string) []any {
	val, ok := v.present(obj, path, key)
	if !ok || val == nil {
		return nil
	}
	arr, ok := val.([]any)
	if !ok {
		v.fail(join(path, key), "expected array, got "+kindOf(val))
		return nil
	}
	return arr
}

// strList reads a required array of strings. The result is never nil when
// validation succeeds.
func (v *validator) strList(obj map[string]any, path, key string) []string {
	arr := v.list(obj, path, key)
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := scalarString(item)
		if !ok {
			v.fail(join(join(path, key), index(i)), "expected string, got "+kindOf(item))
			return nil
		}
		out = append(out, s)
	}
	return out
}

func (v *validator) score(obj map[string]any, key string) int {
	val, ok := v.present(obj, "", key)
	if !ok {
		return 0
	}
	var f float64
	switch t := val.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			v.fail(key, "expected number")
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			v.fail(key, "expected number, got string")
			return 0
		}
		f = parsed
	default:
		v.fail(key, "expected number, got "+kindOf(val))
		return 0
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		v.fail(key, "must be between 0 and 100")
		return 0
	}
	return int(math.Round(f))
}

func (v *validator) verdict(obj map[string]any, path string) string {
	s := v.str(obj, path, "verdict")
	if v.err != nil {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "selected":
		return domain.VerdictSelected
	case "rejected":
		return domain.VerdictRejected
	}
	v.fail(join(path, "verdict"), "must be Selected or Rejected")
	return ""
}

func scalarString(val any) (string, bool) {
	switch t := val.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func kindOf(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "unknown"
}
