package core

import (
	"errors"
	"testing"

	"google.golang.org/api/calendar/v3"
)

func TestWakeOffsetMinutes(t *testing.T) {
	cases := []struct {
		actual   string
		expected string
		want     int
	}{
		{"2025-01-15T08:15:00Z", "2025-01-15T07:00:00Z", 75},
		{"2025-01-15T07:00:00Z", "2025-01-15T07:00:00Z", 0},
		{"2025-01-15T06:30:00Z", "2025-01-15T07:00:00Z", -30},
		// Different written zones still compare on wall clock alone.
		{"2025-01-15T08:15:00+09:00", "2025-01-15T07:00:00Z", 75},
		{"2025-01-15T08:15:00Z", "2025-01-15T07:00:00+09:00", 75},
		// Seconds truncate toward zero.
		{"2025-01-15T07:01:30Z", "2025-01-15T07:00:00Z", 1},
		{"2025-01-15T06:58:30Z", "2025-01-15T07:00:00Z", -1},
	}

	for _, c := range cases {
		actual, err := ParseTimeAny(c.actual)
		if err != nil {
			t.Fatalf("parse %q: %v", c.actual, err)
		}
		expected, err := ParseTimeAny(c.expected)
		if err != nil {
			t.Fatalf("parse %q: %v", c.expected, err)
		}
		if got := WakeOffsetMinutes(actual, expected); got != c.want {
			t.Fatalf("WakeOffsetMinutes(%s, %s) = %d, want %d", c.actual, c.expected, got, c.want)
		}
	}
}

func TestFindSleepMarker_FirstInInputOrder(t *testing.T) {
	events := []*calendar.Event{
		mkTimedEvent("g", "Gym", "2025-01-15T07:30:00Z", "2025-01-15T08:30:00Z"),
		mkTimedEvent("s1", "Sleep", "2025-01-14T23:00:00Z", "2025-01-15T07:00:00Z"),
		mkTimedEvent("s2", "Bedtime", "2025-01-15T22:00:00Z", "2025-01-15T23:00:00Z"),
	}

	marker := FindSleepMarker(events)
	if marker == nil || marker.Id != "s1" {
		t.Fatalf("FindSleepMarker picked %v, want s1", marker)
	}
}

func TestExpectedWakeTime(t *testing.T) {
	events := []*calendar.Event{
		mkTimedEvent("s", "Sleep", "2025-01-14T23:00:00Z", "2025-01-15T07:00:00Z"),
	}

	got, err := ExpectedWakeTime(events)
	if err != nil {
		t.Fatalf("ExpectedWakeTime: %v", err)
	}
	if got.Hour() != 7 || got.Minute() != 0 {
		t.Fatalf("expected wake = %02d:%02d, want 07:00", got.Hour(), got.Minute())
	}
}

func TestExpectedWakeTime_NoMarker(t *testing.T) {
	events := []*calendar.Event{
		mkTimedEvent("g", "Gym", "2025-01-15T07:30:00Z", "2025-01-15T08:30:00Z"),
	}

	_, err := ExpectedWakeTime(events)
	if !errors.Is(err, ErrNoMarkerEvent) {
		t.Fatalf("err = %v, want ErrNoMarkerEvent", err)
	}
}

func TestExpectedWakeTime_MarkerWithoutTimedEnd(t *testing.T) {
	events := []*calendar.Event{
		mkAllDayEvent("s", "Sleep", "2025-01-15"),
	}

	_, err := ExpectedWakeTime(events)
	if !errors.Is(err, ErrNoMarkerEvent) {
		t.Fatalf("err = %v, want ErrNoMarkerEvent", err)
	}
}
