package project

import (
	"fmt"

	"roomcal/internal/booking"
)

// ProjectionError reports a booking whose room_id did not resolve against
// the room collection of the same synchronization pass. This is a
// data-integrity fault in the upstream data, not a droppable event: a
// partial calendar is worse than a visible failure.
type ProjectionError struct {
	BookingID booking.ID
	RoomID    booking.ID
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("project: booking %s references unknown room %q", e.BookingID, e.RoomID)
}

type roomRef struct {
	name  string
	color string
}

// Project joins bookings with room metadata and produces exactly one
// calendar event per booking. Start/End are composed as date + "T" + time
// of day and left as local wall-clock strings for the widget.
//
// If any booking references a room absent from rooms, Project fails with
// a *ProjectionError and returns no partial output.
func Project(bookings []booking.Booking, rooms []booking.Room) ([]booking.CalendarEvent, error) {
	refs := make(map[booking.ID]roomRef, len(rooms))
	for _, r := range rooms {
		refs[r.ID] = roomRef{name: r.Name, color: r.Color}
	}

	events := make([]booking.CalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		ref, ok := refs[b.RoomID]
		if !ok {
			return nil, &ProjectionError{BookingID: b.ID, RoomID: b.RoomID}
		}

		events = append(events, booking.CalendarEvent{
			ID:    b.ID,
			Title: fmt.Sprintf("%s (%s) - %s", b.UserName, b.Area, ref.name),
			Start: b.Date + "T" + b.StartTime,
			End:   b.Date + "T" + b.EndTime,
			Color: ref.color,
			Detail: booking.Detail{
				User:      b.UserName,
				Email:     b.UserEmail,
				Area:      b.Area,
				Room:      ref.name,
				Attendees: b.Attendees,
			},
		})
	}

	return events, nil
}
