package parsers

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/tanpawarit/tripcomposer/internal/agent/model"
)

// Field size limits for text coming from the model.
const (
	maxMessageLen = 4000
	maxFieldLen   = 500
)

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// optText trims a string value; empty or non-string values become nil.
func optText(v any, maxLen int) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || !utf8.ValidString(s) {
		return nil
	}
	s = clip(s, maxLen)
	return &s
}

func optString(v any) *string { return optText(v, maxFieldLen) }

// optUpper is optString upper-cased, for codes.
func optUpper(v any) *string {
	s := optString(v)
	if s == nil {
		return nil
	}
	up := strings.ToUpper(*s)
	return &up
}

// optNumber accepts finite JSON numbers and numeric strings.
func optNumber(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// optAmount is optNumber restricted to non-negative values.
func optAmount(v any) *float64 {
	f := optNumber(v)
	if f == nil || *f < 0 {
		return nil
	}
	return f
}

// optCount is a non-negative whole number.
func optCount(v any) *int {
	f := optNumber(v)
	if f == nil || *f < 0 || *f > math.MaxInt32 {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

func optDate(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if d := model.NormalizeDate(s); d != "" {
		return &d
	}
	return nil
}

func optCurrency(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	// model output must already be upper-case; tool payloads go through NormalizeCurrency instead
	if c := strings.TrimSpace(s); model.IsCurrencyCode(c) {
		return &c
	}
	return nil
}

func optBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

// confidence clamps to [0,1] and rounds to two decimals.
func confidence(v any) *float64 {
	f := optNumber(v)
	if f == nil {
		return nil
	}
	c := math.Round(math.Min(1, math.Max(0, *f))*100) / 100
	return &c
}

// stringList keeps trimmed non-empty strings, deduplicated case-insensitively, capped at max.
func stringList(v any, max int) []string {
	out := []string{}
	raw, ok := v.([]any)
	if !ok {
		return out
	}
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		s := optString(item)
		if s == nil {
			continue
		}
		key := fold.String(*s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, *s)
		if len(out) == max {
			break
		}
	}
	return out
}
