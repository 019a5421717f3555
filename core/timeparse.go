package core

import (
	"time"
)

var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimeAny parses the timestamp shapes the calendar and sleep APIs
// produce. The zone written in the input is kept as parsed: "Z" comes
// back as UTC, an explicit offset as that fixed zone, and a zoneless
// stamp with a zero offset.
func ParseTimeAny(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// StripZone rebuilds t's wall-clock reading in UTC. Subtracting two
// stripped times compares their local readings no matter how each was
// originally labeled.
func StripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
