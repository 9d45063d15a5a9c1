package sentiment

import (
	"errors"
	"strings"
	"time"
)

var errEmptyTimestamp = errors.New("empty timestamp")

// Fractional seconds are accepted after the seconds field by time.Parse even though the
// layouts do not spell them out.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseTimestamp parses the ISO-8601-like strings the scraper emits. A "Z" suffix is read as
// +00:00. Values without an offset are taken as UTC. The returned time keeps the offset written
// in the string, so its calendar day is the day the post was stamped with.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}
	s = strings.ReplaceAll(s, "Z", "+00:00")

	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
