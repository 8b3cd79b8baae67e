package view

// Calendar grid view identifiers, matching the widget's vocabulary.
const (
	DayGrid   = "timeGridDay"
	WeekGrid  = "timeGridWeek"
	MonthGrid = "dayGridMonth"
)

// DefaultNarrowBreakpoint is the viewport width (px) below which the
// calendar is considered narrow.
const DefaultNarrowBreakpoint = 768

// ToolbarLeft is the left-hand toolbar control group, identical for both
// policies.
const ToolbarLeft = "prev,next today"

// Policy is the view configuration derived from a viewport width.
type Policy struct {
	InitialView  string   `json:"initial_view"`
	ToolbarRight []string `json:"toolbar_right"`
	Narrow       bool     `json:"narrow"`
}

// Resolve derives the view policy for a viewport width using the default
// breakpoint. It is a pure function: same width, same policy.
func Resolve(widthPx int) Policy {
	return ResolveAt(widthPx, DefaultNarrowBreakpoint)
}

// ResolveAt is Resolve with an explicit breakpoint. Widths below the
// breakpoint get the single-day grid with a minimal right toolbar; widths
// at or above it get the week grid with the full month/week/day controls.
func ResolveAt(widthPx, breakpointPx int) Policy {
	if breakpointPx <= 0 {
		breakpointPx = DefaultNarrowBreakpoint
	}
	if widthPx < breakpointPx {
		return Policy{
			InitialView:  DayGrid,
			ToolbarRight: []string{DayGrid},
			Narrow:       true,
		}
	}
	return Policy{
		InitialView:  WeekGrid,
		ToolbarRight: []string{MonthGrid, WeekGrid, DayGrid},
		Narrow:       false,
	}
}

// OnResize returns the view the widget should show after a viewport
// resize, given the view currently displayed.
//
// Resize policy: a resize always forces the grid view matching the new
// width (day below the breakpoint, week at or above), even if the user
// had navigated elsewhere. This mirrors the widget's historical behavior
// and is applied consistently; the host decides whether to invoke it.
func OnResize(widthPx, breakpointPx int, currentView string) (string, bool) {
	p := ResolveAt(widthPx, breakpointPx)
	if p.InitialView == currentView {
		return currentView, false
	}
	return p.InitialView, true
}

// Options are the static widget options that do not depend on viewport
// width.
type Options struct {
	Locale      string `json:"locale"`
	SlotMinTime string `json:"slot_min_time"`
	SlotMaxTime string `json:"slot_max_time"`
	AllDaySlot  bool   `json:"all_day_slot"`
	Height      string `json:"height"`
	ToolbarLeft string `json:"toolbar_left"`
}

// DefaultOptions returns the widget options used when the config does not
// override them: Spanish locale, 05:00-22:00 slot window, no all-day row.
func DefaultOptions() Options {
	return Options{
		Locale:      "es",
		SlotMinTime: "05:00:00",
		SlotMaxTime: "22:00:00",
		AllDaySlot:  false,
		Height:      "auto",
		ToolbarLeft: ToolbarLeft,
	}
}
