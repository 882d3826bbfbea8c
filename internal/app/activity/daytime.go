package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/lifeio/lifeio/internal/domain"
)

// DayBoundary returns 23:59:59.999999 of t's calendar date in t's location.
func DayBoundary(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999000, t.Location())
}

// ClipToDayBoundary returns end, or DayBoundary(start) when end falls after it.
func ClipToDayBoundary(start, end time.Time) time.Time {
	boundary := DayBoundary(start)
	if end.After(boundary) {
		return boundary
	}
	return end
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns midnight of the first day of t's month in t's location.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// timestampLayouts are tried in order. Layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	domain.DateLayout,
}

// ParseTimestamp parses an ISO-8601 timestamp, keeping its UTC offset.
// field names the input in the returned ValidationError.
func ParseTimestamp(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.Invalid(field, "is required")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.Invalid(field, "invalid timestamp %q", s)
}

// FormatTimestamp renders t the way ParseTimestamp accepts it back.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// describe is used in log lines.
func describe(start, end time.Time) string {
	return fmt.Sprintf("[%s, %s)", FormatTimestamp(start), FormatTimestamp(end))
}
