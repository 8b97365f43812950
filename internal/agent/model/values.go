package model

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the only date format accepted from tools and model output.
const DateLayout = "2006-01-02"

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// NormalizeDate returns s trimmed when it is a real YYYY-MM-DD calendar date, else "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return ""
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ""
	}
	return s
}

// IsCurrencyCode reports whether s is already a three-letter upper-case code.
func IsCurrencyCode(s string) bool {
	return currencyPattern.MatchString(s)
}

// NormalizeCurrency accepts three-letter codes in any case and returns them upper-cased, else "".
func NormalizeCurrency(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !currencyPattern.MatchString(s) {
		return ""
	}
	return s
}

// DaysBetween returns the whole days from start to end; ok is false for invalid or reversed dates.
func DaysBetween(start, end string) (int, bool) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0, false
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0, false
	}
	if e.Before(s) {
		return 0, false
	}
	return int(e.Sub(s).Hours() / 24), true
}
