package calendar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"roomcal/internal/booking"
)

// Widget is the single owned calendar surface. All mutation goes through
// the Controller; nothing else may touch the widget directly.
type Widget interface {
	// ReplaceEvents swaps the entire rendered event set atomically. No
	// event from a previous set may survive and none may be duplicated.
	ReplaceEvents(events []booking.CalendarEvent)
	// SetEmphasis toggles the cosmetic hover emphasis for one event.
	SetEmphasis(id booking.ID, on bool)
}

// FormPresenter is the host's booking form and dialog surface.
type FormPresenter interface {
	SetDate(date string)
	SetStartTime(t string)
	ShowDialog()
	HideDialog()
	Reset()
}

// DetailPresenter receives the detail payload of an activated event. How
// it is rendered (modal, panel, toast) is the host's business; the
// controller only produces the payload.
type DetailPresenter interface {
	ShowDetail(d EventDetail)
}

// EventDetail is the disclosure payload for one activated event.
// Attendees is omitted entirely when the booking carried none.
type EventDetail struct {
	User      string `json:"user"`
	Email     string `json:"email"`
	Area      string `json:"area"`
	Room      string `json:"room"`
	TimeRange string `json:"time_range"`
	Attendees string `json:"attendees,omitempty"`
}

// Controller mediates between raw widget callbacks and domain actions.
// It owns the widget instance handed to it at construction.
type Controller struct {
	widget Widget
	form   FormPresenter
	detail DetailPresenter

	mu    sync.RWMutex
	index map[booking.ID]booking.CalendarEvent
}

func New(w Widget, form FormPresenter, detail DetailPresenter) *Controller {
	return &Controller{
		widget: w,
		form:   form,
		detail: detail,
		index:  make(map[booking.ID]booking.CalendarEvent),
	}
}

// ReplaceEvents swaps the widget's full event set and rebuilds the
// activation index. Event identity is not preserved across refreshes.
func (c *Controller) ReplaceEvents(events []booking.CalendarEvent) {
	idx := make(map[booking.ID]booking.CalendarEvent, len(events))
	for _, ev := range events {
		idx[ev.ID] = ev
	}

	c.mu.Lock()
	c.index = idx
	c.mu.Unlock()

	c.widget.ReplaceEvents(events)
}

// OnSlotActivate handles a click on a calendar slot. The value is either
// a date ("2024-05-01") or a date-time ("2024-05-01T14:30:00"); the date
// and, when present, the HH:MM time are written into the booking form and
// the dialog is requested.
func (c *Controller) OnSlotActivate(value string) {
	date, clock, hasClock := strings.Cut(value, "T")
	c.form.SetDate(date)
	if hasClock {
		if len(clock) > 5 {
			clock = clock[:5]
		}
		c.form.SetStartTime(clock)
	}
	c.form.ShowDialog()
}

// OnEventActivate builds the detail payload for the event with the given
// id, hands it to the detail presenter and returns it.
func (c *Controller) OnEventActivate(id booking.ID) (EventDetail, error) {
	c.mu.RLock()
	ev, ok := c.index[id]
	c.mu.RUnlock()
	if !ok {
		return EventDetail{}, fmt.Errorf("calendar: no event with id %s", id)
	}

	d := EventDetail{
		User:      ev.Detail.User,
		Email:     ev.Detail.Email,
		Area:      ev.Detail.Area,
		Room:      ev.Detail.Room,
		TimeRange: formatTimeRange(ev.Start, ev.End),
		Attendees: ev.Detail.Attendees,
	}
	c.detail.ShowDetail(d)
	return d, nil
}

// OnHoverChange toggles the hover emphasis of an event. Purely
// presentational.
func (c *Controller) OnHoverChange(id booking.ID, entered bool) {
	c.widget.SetEmphasis(id, entered)
}

// formatTimeRange renders "09:00 - 10:00" from two wall-clock event
// timestamps. Values that do not parse are passed through untouched so a
// malformed record still discloses something readable.
func formatTimeRange(start, end string) string {
	return shortTime(start) + " - " + shortTime(end)
}

func shortTime(v string) string {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15:04")
		}
	}
	return v
}
