package core

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// ShiftTimestamp adds offset to a serialized timestamp and formats the
// result the way the input was written: a trailing "Z" stays a trailing
// "Z" around a UTC reading, an explicit numeric offset stays that
// offset, a zoneless stamp stays zoneless. Shifting by zero returns the
// input byte for byte.
func ShiftTimestamp(s string, offset time.Duration) (string, error) {
	t, err := ParseTimeAny(s)
	if err != nil {
		return "", err
	}
	shifted := t.Add(offset)

	switch {
	case hasZuluSuffix(s):
		return shifted.UTC().Format("2006-01-02T15:04:05") + "Z", nil
	case hasOffsetSuffix(s):
		return shifted.Format("2006-01-02T15:04:05-07:00"), nil
	default:
		return shifted.Format("2006-01-02T15:04:05"), nil
	}
}

func hasZuluSuffix(s string) bool {
	return len(s) > 0 && s[len(s)-1] == 'Z'
}

func hasOffsetSuffix(s string) bool {
	if len(s) < len("2006-01-02T15:04:05-07:00") {
		return false
	}
	sign := s[len(s)-6]
	return (sign == '+' || sign == '-') && s[len(s)-3] == ':'
}

// ShiftEvent moves a timed event's start and end forward by
// offsetMinutes, in place. Both timestamps are computed before either
// is assigned, so a parse failure leaves the event untouched.
func ShiftEvent(ev *calendar.Event, offsetMinutes int) error {
	if ev.Start == nil || ev.Start.DateTime == "" || ev.End == nil || ev.End.DateTime == "" {
		return fmt.Errorf("event %s has no timed start/end", ev.Id)
	}

	offset := time.Duration(offsetMinutes) * time.Minute
	newStart, err := ShiftTimestamp(ev.Start.DateTime, offset)
	if err != nil {
		return fmt.Errorf("shift start %q: %w", ev.Start.DateTime, err)
	}
	newEnd, err := ShiftTimestamp(ev.End.DateTime, offset)
	if err != nil {
		return fmt.Errorf("shift end %q: %w", ev.End.DateTime, err)
	}

	ev.Start.DateTime = newStart
	ev.End.DateTime = newEnd
	return nil
}
