package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"roomcal/internal/booking"
)

// eventTimeLayouts are the wall-clock forms a projected event may carry.
var eventTimeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}

// Feed serializes the current calendar event set as an iCalendar feed so
// that bookings can be subscribed to from desktop calendar clients.
//
// Event timestamps are wall-clock values with no zone attached; they are
// anchored in loc (falling back to time.Local), matching the on-screen
// calendar, which performs no timezone normalization either.
func Feed(events []booking.CalendarEvent, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//roomcal//booking calendar//ES")

	now := time.Now().In(loc)

	for _, ev := range events {
		start, err := parseEventTime(ev.Start, loc)
		if err != nil {
			return "", fmt.Errorf("ics: event %s start: %w", ev.ID, err)
		}
		end, err := parseEventTime(ev.End, loc)
		if err != nil {
			return "", fmt.Errorf("ics: event %s end: %w", ev.ID, err)
		}

		ve := cal.AddEvent(fmt.Sprintf("booking-%s@roomcal", ev.ID))
		ve.SetDtStampTime(now)
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		ve.SetSummary(ev.Title)
		ve.SetLocation(ev.Detail.Room)
		ve.SetDescription(describeDetail(ev.Detail))
	}

	return cal.Serialize(), nil
}

func parseEventTime(v string, loc *time.Location) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable event time %q", v)
}

func describeDetail(d booking.Detail) string {
	desc := fmt.Sprintf("%s (%s) <%s>", d.User, d.Area, d.Email)
	if d.Attendees != "" {
		desc += fmt.Sprintf(" / asistentes: %s", d.Attendees)
	}
	return desc
}
