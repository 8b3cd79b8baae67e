package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roomcal/internal/calendar"
	appLog "roomcal/internal/log"
)

// RejectedError is a booking the upstream server refused: non-2xx status
// with a detail message meant for the user, verbatim.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("submit: rejected with status %d: %s", e.Status, e.Detail)
}

// TransportError is a network or body-parse failure, distinct from a
// rejection: the user gets a generic notice and may simply retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("submit: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// Form carries the booking form fields in wire order. All values are
// strings exactly as the form produced them; the server is authoritative
// for validation.
type Form struct {
	RoomID    string
	UserName  string
	UserEmail string
	Area      string
	Date      string
	StartTime string
	EndTime   string
	Attendees string
}

// Values serializes the form into the form-encoded body the booking
// creation endpoint expects.
func (f Form) Values() url.Values {
	v := url.Values{}
	v.Set("room_id", f.RoomID)
	v.Set("user_name", f.UserName)
	v.Set("user_email", f.UserEmail)
	v.Set("area", f.Area)
	v.Set("booking_date", f.Date)
	v.Set("start_time", f.StartTime)
	v.Set("end_time", f.EndTime)
	if f.Attendees != "" {
		v.Set("attendees", f.Attendees)
	}
	return v
}

// Submitter posts booking forms to the upstream API and drives the
// success side effects: close the dialog, clear the form, resynchronize
// the event set so the new booking shows up without a reload.
type Submitter struct {
	endpoint string
	http     *http.Client
	form     calendar.FormPresenter
	resync   func(ctx context.Context) error
}

// New constructs a Submitter. resync is invoked after each acknowledged
// creation; it may be nil in tests.
func New(baseURL string, timeout time.Duration, form calendar.FormPresenter, resync func(ctx context.Context) error) *Submitter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Submitter{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/bookings",
		http:     &http.Client{Timeout: timeout},
		form:     form,
		resync:   resync,
	}
}

// upstreamReply is the decoded response body. On success the shape is
// unspecified beyond being JSON; on failure it carries at least Detail.
type upstreamReply struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Submit sends one booking form. On rejection or transport failure the
// dialog and form state are left untouched so the user can correct and
// resubmit. There is no in-flight guard; overlapping submissions race to
// last-write-wins on the subsequent resynchronization.
func (s *Submitter) Submit(ctx context.Context, f Form) error {
	body := f.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(body))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// The body is parsed regardless of status: failure replies carry the
	// user-facing detail, and an unparseable body is a transport fault.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}
	var reply upstreamReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return &TransportError{Err: fmt.Errorf("decode reply: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := reply.Detail
		if detail == "" {
			detail = resp.Status
		}
		return &RejectedError{Status: resp.StatusCode, Detail: detail}
	}

	appLog.Info("booking created", "room_id", f.RoomID, "date", f.Date, "start", f.StartTime)

	s.form.HideDialog()
	s.form.Reset()

	if s.resync != nil {
		if err := s.resync(ctx); err != nil {
			// The booking exists upstream; the stale render is refreshed on
			// the next pass. Not a submission failure.
			appLog.Error("post-submit resynchronization failed", err)
		}
	}
	return nil
}
