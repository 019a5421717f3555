package core

import (
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/calendar/v3"
)

// ErrOffsetUnresolved means automatic wake detection failed and no
// manual offset was given.
var ErrOffsetUnresolved = errors.New("could not resolve wake offset")

const (
	ActionShifted = "shifted"
	ActionSkipped = "skipped"
	ActionFailed  = "failed"
)

type RunParams struct {
	CalendarID string
	// Minutes to shift by; zero means detect from the sleep tracker.
	ManualOffset int
	DryRun       bool
}

type RunResult struct {
	CalendarID    string         `json:"calendar_id"`
	OffsetMinutes int            `json:"offset_minutes"`
	DryRun        bool           `json:"dry_run"`
	Shifted       int            `json:"shifted"`
	Skipped       int            `json:"skipped"`
	Failed        int            `json:"failed"`
	Outcomes      []EventOutcome `json:"outcomes,omitempty"`
}

type EventOutcome struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Action  string `json:"action"`
	Detail  string `json:"detail,omitempty"`
}

// Runner wires the calendar and sleep collaborators into one shift run.
// Oura may be nil when callers always pass a manual offset. Now
// defaults to time.Now and exists for tests.
type Runner struct {
	Calendar CalendarService
	Oura     *OuraClient
	Now      func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run fetches today's events, resolves the wake offset and shifts every
// solo timed event forward. Sleep markers, all-day events and events
// with other attendees stay put. An update failure is recorded and the
// run moves on to the next event.
func (r *Runner) Run(params RunParams) (*RunResult, error) {
	calendarID := params.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	ownerEmail, err := r.Calendar.OwnerEmail(calendarID)
	if err != nil {
		return nil, err
	}

	events, err := r.Calendar.EventsForDay(calendarID, r.now())
	if err != nil {
		return nil, err
	}
	log.Printf("found %d events", len(events))

	offsetMinutes, err := r.resolveOffset(params, events)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		CalendarID:    calendarID,
		OffsetMinutes: offsetMinutes,
		DryRun:        params.DryRun,
	}
	log.Printf("offset: %d minutes (%.1f hours)", offsetMinutes, float64(offsetMinutes)/60)

	if offsetMinutes <= 0 {
		log.Printf("woke up on time or early, nothing to shift")
		return result, nil
	}

	for _, ev := range events {
		outcome := r.processEvent(calendarID, ev, ownerEmail, offsetMinutes, params.DryRun)
		switch outcome.Action {
		case ActionShifted:
			result.Shifted++
		case ActionFailed:
			result.Failed++
		default:
			result.Skipped++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	log.Printf("done: shifted %d, skipped %d, failed %d", result.Shifted, result.Skipped, result.Failed)
	return result, nil
}

func (r *Runner) resolveOffset(params RunParams, events []*calendar.Event) (int, error) {
	if params.ManualOffset != 0 {
		log.Printf("using manual offset: %d minutes", params.ManualOffset)
		return params.ManualOffset, nil
	}

	if r.Oura == nil {
		return 0, fmt.Errorf("%w: no sleep data source configured, use a manual offset", ErrOffsetUnresolved)
	}

	actualWake, err := LatestWakeTime(r.Oura, r.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOffsetUnresolved, err)
	}
	expectedWake, err := ExpectedWakeTime(events)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOffsetUnresolved, err)
	}

	log.Printf("expected wake %s, actual wake %s",
		StripZone(expectedWake).Format("15:04"), StripZone(actualWake).Format("15:04"))
	return WakeOffsetMinutes(actualWake, expectedWake), nil
}

func (r *Runner) processEvent(calendarID string, ev *calendar.Event, ownerEmail string, offsetMinutes int, dryRun bool) EventOutcome {
	title := ev.Summary
	if title == "" {
		title = "Untitled"
	}
	outcome := EventOutcome{EventID: ev.Id, Title: title}

	switch Classify(ev, ownerEmail) {
	case ClassSleepMarker:
		outcome.Action, outcome.Detail = ActionSkipped, "sleep event"
		log.Printf("  SKIP (sleep event): %s", title)
		return outcome
	case ClassAllDay:
		outcome.Action, outcome.Detail = ActionSkipped, "all-day"
		log.Printf("  SKIP (all-day): %s", title)
		return outcome
	case ClassHasAttendees:
		outcome.Action, outcome.Detail = ActionSkipped, "has attendees"
		log.Printf("  SKIP (has attendees): %s", title)
		return outcome
	}

	if ev.Start == nil || ev.Start.DateTime == "" || ev.End == nil || ev.End.DateTime == "" {
		outcome.Action, outcome.Detail = ActionSkipped, "no timed start"
		log.Printf("  SKIP (no timed start): %s", title)
		return outcome
	}

	oldStart := ev.Start.DateTime
	if err := ShiftEvent(ev, offsetMinutes); err != nil {
		outcome.Action, outcome.Detail = ActionFailed, err.Error()
		log.Printf("  FAILED: %s: %v", title, err)
		return outcome
	}

	window := shiftWindow(oldStart, ev.Start.DateTime)
	if dryRun {
		outcome.Action, outcome.Detail = ActionShifted, "dry run"
		log.Printf("  WOULD SHIFT: %s (%s)", title, window)
		return outcome
	}

	if err := r.Calendar.UpdateEvent(calendarID, ev); err != nil {
		outcome.Action, outcome.Detail = ActionFailed, err.Error()
		log.Printf("  FAILED: %s: %v", title, err)
		return outcome
	}

	outcome.Action = ActionShifted
	log.Printf("  SHIFTED: %s (%s)", title, window)
	return outcome
}

func shiftWindow(oldStart, newStart string) string {
	from, err1 := ParseTimeAny(oldStart)
	to, err2 := ParseTimeAny(newStart)
	if err1 != nil || err2 != nil {
		return oldStart + " -> " + newStart
	}
	return from.Format("15:04") + " -> " + to.Format("15:04")
}
