package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// Args is a tool argument object decoded from untrusted model output.
type Args map[string]any

// ParseArgs decodes the raw argument blob; anything that is not a JSON object yields an empty Args.
func ParseArgs(raw string) Args {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Args{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return Args{}
	}
	return Args(m)
}

// String returns a trimmed string; numbers and booleans are rendered as text.
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Upper returns String upper-cased, for codes.
func (a Args) Upper(key string) string {
	return strings.ToUpper(a.String(key))
}

// Float accepts JSON numbers and numeric strings; NaN and Inf are rejected.
func (a Args) Float(key string) (float64, bool) {
	var f float64
	switch v := a[key].(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int truncates Float toward zero.
func (a Args) Int(key string) (int, bool) {
	f, ok := a.Float(key)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// PositiveInt returns the first positive value among the argument and the fallbacks, else 0.
func (a Args) PositiveInt(key string, fallbacks ...int) int {
	if n, ok := a.Int(key); ok && n > 0 {
		return n
	}
	for _, f := range fallbacks {
		if f > 0 {
			return f
		}
	}
	return 0
}

// NonNegativeInt is like PositiveInt but accepts zero from the argument.
func (a Args) NonNegativeInt(key string, fallback int) int {
	if n, ok := a.Int(key); ok && n >= 0 {
		return n
	}
	if fallback > 0 {
		return fallback
	}
	return 0
}

// Date returns a valid YYYY-MM-DD value or "".
func (a Args) Date(key string) string {
	return model.NormalizeDate(a.String(key))
}

// Currency returns a valid upper-case ISO code or "".
func (a Args) Currency(key string) string {
	return model.NormalizeCurrency(a.String(key))
}

// StringSlice keeps non-empty string entries of an array argument.
func (a Args) StringSlice(key string) []string {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Objects returns the object entries of an array argument.
func (a Args) Objects(key string) []Args {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Args, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Args(m))
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
