package core

import (
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout transactions are entered with.
const DateLayout = time.DateOnly

// ParseDate parses a stored transaction date in local time.
// Calendar dates parse to local midnight; RFC 3339 timestamps keep their
// instant. The second result is false for anything else.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), true
	}
	return time.Time{}, false
}

// StartOfDay truncates t to local midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// FormatDate renders t as a calendar date.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// Today returns the current local date as entered by the form by default.
func Today() string {
	return FormatDate(time.Now())
}
