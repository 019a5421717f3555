package core

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// ErrNoMarkerEvent means today's calendar has no sleep marker event to
// read the planned wake time from.
var ErrNoMarkerEvent = errors.New("no sleep marker event found")

// FindSleepMarker returns the first event in input order whose title
// matches the sleep lexicon, or nil.
func FindSleepMarker(events []*calendar.Event) *calendar.Event {
	for _, ev := range events {
		if IsSleepMarker(ev.Summary) {
			return ev
		}
	}
	return nil
}

// ExpectedWakeTime reads the planned wake time off the end of today's
// sleep marker event.
func ExpectedWakeTime(events []*calendar.Event) (time.Time, error) {
	marker := FindSleepMarker(events)
	if marker == nil {
		return time.Time{}, ErrNoMarkerEvent
	}
	if marker.End == nil || marker.End.DateTime == "" {
		return time.Time{}, fmt.Errorf("%w: marker %q has no timed end", ErrNoMarkerEvent, marker.Summary)
	}
	t, err := ParseTimeAny(marker.End.DateTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse marker end %q: %w", marker.End.DateTime, err)
	}
	return t, nil
}

// WakeOffsetMinutes is how many minutes later than planned the user
// woke up. Both stamps are compared on their wall-clock readings alone;
// the division truncates toward zero.
func WakeOffsetMinutes(actualWake, expectedWake time.Time) int {
	delta := StripZone(actualWake).Sub(StripZone(expectedWake))
	return int(delta / time.Minute)
}
