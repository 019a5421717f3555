package core

import (
	"google.golang.org/api/calendar/v3"
)

func mkTimedEvent(id, summary, start, end string) *calendar.Event {
	return &calendar.Event{
		Id:      id,
		Summary: summary,
		Start:   &calendar.EventDateTime{DateTime: start},
		End:     &calendar.EventDateTime{DateTime: end},
	}
}

func mkAllDayEvent(id, summary, date string) *calendar.Event {
	return &calendar.Event{
		Id:      id,
		Summary: summary,
		Start:   &calendar.EventDateTime{Date: date},
		End:     &calendar.EventDateTime{Date: date},
	}
}

func withAttendees(ev *calendar.Event, emails ...string) *calendar.Event {
	for _, email := range emails {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}
	return ev
}

func withSelfAttendee(ev *calendar.Event, email string) *calendar.Event {
	ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email, Self: true})
	return ev
}
