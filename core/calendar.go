package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarService is the slice of the Google Calendar API a shift run
// needs. GoogleCalendar implements it; tests substitute a mock.
type CalendarService interface {
	OwnerEmail(calendarID string) (string, error)
	EventsForDay(calendarID string, day time.Time) ([]*calendar.Event, error)
	UpdateEvent(calendarID string, ev *calendar.Event) error
}

type GoogleCalendar struct {
	srv *calendar.Service
}

func NewGoogleCalendar(ctx context.Context, client *http.Client) (*GoogleCalendar, error) {
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &GoogleCalendar{srv: srv}, nil
}

// OwnerEmail resolves the calendar's own identity. The run uses it to
// tell the user's attendee entries apart from other people's.
func (g *GoogleCalendar) OwnerEmail(calendarID string) (string, error) {
	cal, err := g.srv.Calendars.Get(calendarID).Do()
	if err != nil {
		return "", fmt.Errorf("get calendar %s: %w", calendarID, err)
	}
	return cal.Id, nil
}

// EventsForDay lists the day's events, recurrences expanded to single
// instances, in start order. The window runs midnight to midnight on
// the day's local date.
func (g *GoogleCalendar) EventsForDay(calendarID string, day time.Time) ([]*calendar.Event, error) {
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := g.srv.Events.List(calendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", calendarID, err)
	}
	return events.Items, nil
}

func (g *GoogleCalendar) UpdateEvent(calendarID string, ev *calendar.Event) error {
	if _, err := g.srv.Events.Update(calendarID, ev.Id, ev).Do(); err != nil {
		return fmt.Errorf("update event %s: %w", ev.Id, err)
	}
	return nil
}
