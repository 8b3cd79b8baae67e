package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an opaque record identifier. The booking API serves numeric ids
// today, but nothing downstream depends on that, so ids are decoded
// tolerantly from either a JSON number or a JSON string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("booking: invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Room is a bookable physical resource. Immutable for the session;
// fetched fresh on every synchronization pass.
type Room struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
}

// Booking is a reservation of a Room for a date/time interval, as served
// by GET /api/bookings. Date is a calendar date ("2006-01-02"); StartTime
// and EndTime are times of day ("15:04" or "15:04:05").
type Booking struct {
	ID        ID     `json:"id"`
	RoomID    ID     `json:"room_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Area      string `json:"area"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Attendees string `json:"attendees,omitempty"`
}

// Detail carries the disclosure fields of a calendar event. Attendees is
// omitted from any serialized form when absent so that it never shows up
// as an empty or literal "undefined" line.
type Detail struct {
	User      string `json:"user"`
	Email     string `json:"email"`
	Area      string `json:"area"`
	Room      string `json:"room"`
	Attendees string `json:"attendees,omitempty"`
}

// CalendarEvent is the rendering-ready projection of a Booking joined with
// its Room. Start and End are local wall-clock strings in the form
// "2006-01-02T15:04"; the calendar widget interprets them as-is, with no
// timezone conversion.
type CalendarEvent struct {
	ID     ID     `json:"id"`
	Title  string `json:"title"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Color  string `json:"color"`
	Detail Detail `json:"detail"`
}
