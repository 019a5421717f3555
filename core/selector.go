package core

import (
	"strings"

	"google.golang.org/api/calendar/v3"
)

// Event titles that mark sleep or wake bookkeeping. Matching any of
// these exempts the event from shifting and makes it a candidate for
// reading the planned wake time.
var sleepEventNames = []string{"sleep", "wake", "wakeup", "wake up", "bedtime"}

type Classification string

const (
	ClassSleepMarker  Classification = "sleep_marker"
	ClassAllDay       Classification = "all_day"
	ClassHasAttendees Classification = "has_attendees"
	ClassShiftable    Classification = "shiftable"
)

// IsSleepMarker reports whether a title matches the sleep lexicon,
// case-insensitive on substrings.
func IsSleepMarker(summary string) bool {
	lower := strings.ToLower(summary)
	for _, name := range sleepEventNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

func IsAllDay(ev *calendar.Event) bool {
	return ev.Start != nil && ev.Start.Date != ""
}

// IsSolo reports whether the event involves nobody but the calendar
// owner: no attendee list at all, or every attendee either carries the
// owner's email or the self flag.
func IsSolo(ev *calendar.Event, ownerEmail string) bool {
	for _, a := range ev.Attendees {
		if a.Self {
			continue
		}
		if a.Email == ownerEmail {
			continue
		}
		return false
	}
	return true
}

// Classify buckets one event. Each event classifies on its own fields,
// so a list classifies the same in any order.
func Classify(ev *calendar.Event, ownerEmail string) Classification {
	switch {
	case IsSleepMarker(ev.Summary):
		return ClassSleepMarker
	case IsAllDay(ev):
		return ClassAllDay
	case !IsSolo(ev, ownerEmail):
		return ClassHasAttendees
	default:
		return ClassShiftable
	}
}
