package pipeline

import (
	"context"
	"errors"

	"roomcal/internal/calendar"
	"roomcal/internal/fetch"
	appLog "roomcal/internal/log"
	"roomcal/internal/project"
)

// Pipeline runs one synchronization pass: fetch both collections, project
// them into calendar events and replace the widget's event set.
//
// Any failure aborts the pass before the replace, so the previous render
// is never partially updated. Overlapping passes are not cancelled;
// whichever finishes last wins.
type Pipeline struct {
	client *fetch.Client
	ctrl   *calendar.Controller
}

func New(client *fetch.Client, ctrl *calendar.Controller) *Pipeline {
	return &Pipeline{client: client, ctrl: ctrl}
}

// Run executes a full pass. Errors are returned for the caller to decide
// on surfacing; a fetch failure stays silent towards the user while a
// projection failure marks malformed upstream data.
func (p *Pipeline) Run(ctx context.Context) error {
	snap, err := p.client.Snapshot(ctx)
	if err != nil {
		appLog.Error("synchronization fetch failed; keeping previous render", err)
		return err
	}

	events, err := project.Project(snap.Bookings, snap.Rooms)
	if err != nil {
		var perr *project.ProjectionError
		if errors.As(err, &perr) {
			appLog.Error("projection failed on malformed upstream data; keeping previous render", err,
				"booking_id", perr.BookingID,
				"room_id", perr.RoomID,
			)
		} else {
			appLog.Error("projection failed; keeping previous render", err)
		}
		return err
	}

	p.ctrl.ReplaceEvents(events)

	appLog.Info("synchronization complete",
		"bookings", len(snap.Bookings),
		"rooms", len(snap.Rooms),
		"events", len(events),
	)
	return nil
}
