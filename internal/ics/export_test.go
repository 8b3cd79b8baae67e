package ics

import (
	"strings"
	"testing"
	"time"

	"roomcal/internal/booking"
)

func TestFeedContainsOneVEventPerBooking(t *testing.T) {
	events := []booking.CalendarEvent{
		{
			ID:    "1",
			Title: "Ana (Eng) - Sala A",
			Start: "2024-05-01T09:00",
			End:   "2024-05-01T10:00",
			Detail: booking.Detail{
				User: "Ana", Email: "ana@example.com", Area: "Eng", Room: "Sala A",
			},
		},
		{
			ID:    "2",
			Title: "Luis (Ventas) - Sala B",
			Start: "2024-05-02T14:30:00",
			End:   "2024-05-02T15:00:00",
			Detail: booking.Detail{
				User: "Luis", Email: "luis@example.com", Area: "Ventas", Room: "Sala B",
				Attendees: "Eva, Ana",
			},
		},
	}

	feed, err := Feed(events, time.UTC)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	if got := strings.Count(feed, "BEGIN:VEVENT"); got != 2 {
		t.Fatalf("VEVENT count = %d, want 2", got)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"UID:booking-1@roomcal",
		"SUMMARY:Ana (Eng) - Sala A",
		"LOCATION:Sala A",
		"UID:booking-2@roomcal",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed missing %q", want)
		}
	}
	if !strings.Contains(feed, "asistentes: Eva") {
		t.Error("attendees missing from description")
	}
}

func TestFeedEmptyEventSet(t *testing.T) {
	feed, err := Feed(nil, time.UTC)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Error("empty feed should still be a calendar")
	}
	if strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("empty feed should carry no events")
	}
}

func TestFeedRejectsUnparseableTimes(t *testing.T) {
	events := []booking.CalendarEvent{{ID: "1", Start: "bogus", End: "2024-05-01T10:00"}}
	if _, err := Feed(events, time.UTC); err == nil {
		t.Fatal("expected error for unparseable start")
	}
}

func TestParseEventTimeLayouts(t *testing.T) {
	for _, v := range []string{"2024-05-01T09:00", "2024-05-01T09:00:00"} {
		got, err := parseEventTime(v, time.UTC)
		if err != nil {
			t.Fatalf("parse %q: %v", v, err)
		}
		if got.Hour() != 9 || got.Minute() != 0 {
			t.Errorf("parse %q = %v", v, got)
		}
	}
}
