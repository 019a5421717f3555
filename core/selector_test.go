package core

import (
	"testing"

	"google.golang.org/api/calendar/v3"
)

const testOwner = "me@example.com"

func TestIsSleepMarker(t *testing.T) {
	cases := []struct {
		summary string
		want    bool
	}{
		{"Sleep", true},
		{"sleep", true},
		{"Wake up routine", true},
		{"WAKEUP", true},
		{"Bedtime", true},
		{"Gym", false},
		{"Team Sync", false},
		{"", false},
		{"Awaken the dragon", true}, // substring match, same as the lexicon rules
	}

	for _, c := range cases {
		if got := IsSleepMarker(c.summary); got != c.want {
			t.Fatalf("IsSleepMarker(%q) = %v, want %v", c.summary, got, c.want)
		}
	}
}

func TestIsSolo(t *testing.T) {
	noAttendees := mkTimedEvent("e1", "Gym", "2025-01-15T07:30:00Z", "2025-01-15T08:30:00Z")
	if !IsSolo(noAttendees, testOwner) {
		t.Fatalf("event with no attendees should be solo")
	}

	onlySelf := withSelfAttendee(mkTimedEvent("e2", "Focus", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z"), testOwner)
	if !IsSolo(onlySelf, testOwner) {
		t.Fatalf("event with only the owner attending should be solo")
	}

	ownEmailNoFlag := withAttendees(mkTimedEvent("e3", "Focus", "2025-01-15T09:00:00Z", "2025-01-15T10:00:00Z"), testOwner)
	if !IsSolo(ownEmailNoFlag, testOwner) {
		t.Fatalf("attendee matching the owner email should count as self")
	}

	meeting := withAttendees(mkTimedEvent("e4", "Team Sync", "2025-01-15T09:00:00Z", "2025-01-15T09:30:00Z"),
		testOwner, "alice@example.com", "bob@example.com")
	if IsSolo(meeting, testOwner) {
		t.Fatalf("event with other attendees should not be solo")
	}
}

func TestClassify(t *testing.T) {
	sleep := mkTimedEvent("s", "Sleep", "2025-01-14T23:00:00Z", "2025-01-15T07:00:00Z")
	birthday := mkAllDayEvent("b", "Birthday", "2025-01-15")
	meeting := withAttendees(mkTimedEvent("m", "Team Sync", "2025-01-15T09:00:00Z", "2025-01-15T09:30:00Z"),
		"alice@example.com")
	gym := mkTimedEvent("g", "Gym", "2025-01-15T07:30:00Z", "2025-01-15T08:30:00Z")

	cases := []struct {
		name string
		ev   *calendar.Event
		want Classification
	}{
		{"sleep marker", sleep, ClassSleepMarker},
		{"all-day", birthday, ClassAllDay},
		{"has attendees", meeting, ClassHasAttendees},
		{"shiftable", gym, ClassShiftable},
	}

	for _, c := range cases {
		if got := Classify(c.ev, testOwner); got != c.want {
			t.Fatalf("%s: Classify = %q, want %q", c.name, got, c.want)
		}
	}

	// Classification depends only on the event itself, so reversing the
	// list changes nothing.
	for i := len(cases) - 1; i >= 0; i-- {
		c := cases[i]
		if got := Classify(c.ev, testOwner); got != c.want {
			t.Fatalf("%s (reversed): Classify = %q, want %q", c.name, got, c.want)
		}
	}
}

// A sleep-titled all-day meeting still classifies as a sleep marker:
// the lexicon wins over every other bucket.
func TestClassify_LexiconWins(t *testing.T) {
	ev := withAttendees(mkAllDayEvent("s", "Sleep study", "2025-01-15"), "alice@example.com")
	if got := Classify(ev, testOwner); got != ClassSleepMarker {
		t.Fatalf("Classify = %q, want %q", got, ClassSleepMarker)
	}
}

func TestClassify_ZeroAttendeesShiftableUnlessExempt(t *testing.T) {
	gym := mkTimedEvent("g", "Gym", "2025-01-15T07:30:00Z", "2025-01-15T08:30:00Z")
	if got := Classify(gym, testOwner); got != ClassShiftable {
		t.Fatalf("zero-attendee timed event = %q, want %q", got, ClassShiftable)
	}

	nap := mkTimedEvent("n", "Afternoon nap bedtime", "2025-01-15T14:00:00Z", "2025-01-15T15:00:00Z")
	if got := Classify(nap, testOwner); got != ClassSleepMarker {
		t.Fatalf("lexicon-titled event = %q, want %q", got, ClassSleepMarker)
	}
}
