package web

import (
	"sync"
	"time"

	"roomcal/internal/booking"
	"roomcal/internal/calendar"
)

// FormState mirrors the booking form fields the controller may pre-fill.
type FormState struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

// UIState is the server-held state of the kiosk page: the widget's event
// set, the booking dialog/form and the last disclosed event detail. The
// embedded front-end polls it over the JSON API.
//
// UIState implements calendar.Widget, calendar.FormPresenter and
// calendar.DetailPresenter; the controller is the only writer of the
// widget surface, HTTP handlers only read.
type UIState struct {
	mu         sync.RWMutex
	events     []booking.CalendarEvent
	emphasized map[booking.ID]bool
	form       FormState
	dialogOpen bool
	lastDetail *calendar.EventDetail
	updatedAt  time.Time
}

func NewUIState() *UIState {
	return &UIState{emphasized: make(map[booking.ID]bool)}
}

// ReplaceEvents implements calendar.Widget. The prior set is discarded
// wholesale, including any emphasis carried by stale events.
func (u *UIState) ReplaceEvents(events []booking.CalendarEvent) {
	next := make([]booking.CalendarEvent, len(events))
	copy(next, events)

	u.mu.Lock()
	u.events = next
	u.emphasized = make(map[booking.ID]bool)
	u.updatedAt = time.Now()
	u.mu.Unlock()
}

// SetEmphasis implements calendar.Widget.
func (u *UIState) SetEmphasis(id booking.ID, on bool) {
	u.mu.Lock()
	if on {
		u.emphasized[id] = true
	} else {
		delete(u.emphasized, id)
	}
	u.mu.Unlock()
}

// SetDate implements calendar.FormPresenter.
func (u *UIState) SetDate(date string) {
	u.mu.Lock()
	u.form.Date = date
	u.mu.Unlock()
}

// SetStartTime implements calendar.FormPresenter.
func (u *UIState) SetStartTime(t string) {
	u.mu.Lock()
	u.form.StartTime = t
	u.mu.Unlock()
}

// ShowDialog implements calendar.FormPresenter.
func (u *UIState) ShowDialog() {
	u.mu.Lock()
	u.dialogOpen = true
	u.mu.Unlock()
}

// HideDialog implements calendar.FormPresenter.
func (u *UIState) HideDialog() {
	u.mu.Lock()
	u.dialogOpen = false
	u.mu.Unlock()
}

// Reset implements calendar.FormPresenter. Pre-filled fields are cleared
// only on acknowledged submissions; rejections keep the user's input.
func (u *UIState) Reset() {
	u.mu.Lock()
	u.form = FormState{}
	u.mu.Unlock()
}

// ShowDetail implements calendar.DetailPresenter.
func (u *UIState) ShowDetail(d calendar.EventDetail) {
	u.mu.Lock()
	u.lastDetail = &d
	u.mu.Unlock()
}

// Events returns a copy of the current event set.
func (u *UIState) Events() []booking.CalendarEvent {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]booking.CalendarEvent, len(u.events))
	copy(out, u.events)
	return out
}

// Emphasized reports whether the event currently carries hover emphasis.
func (u *UIState) Emphasized(id booking.ID) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.emphasized[id]
}

// Form returns the form pre-fill state and whether the dialog is open.
func (u *UIState) Form() (FormState, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.form, u.dialogOpen
}

// Detail returns the last disclosed event detail, or nil.
func (u *UIState) Detail() *calendar.EventDetail {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.lastDetail == nil {
		return nil
	}
	d := *u.lastDetail
	return &d
}

// UpdatedAt reports when the event set last changed.
func (u *UIState) UpdatedAt() time.Time {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.updatedAt
}
