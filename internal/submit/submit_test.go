package submit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type recordingForm struct {
	dialogOpen bool
	resets     int
}

func (f *recordingForm) SetDate(string)      {}
func (f *recordingForm) SetStartTime(string) {}
func (f *recordingForm) ShowDialog()         { f.dialogOpen = true }
func (f *recordingForm) HideDialog()         { f.dialogOpen = false }
func (f *recordingForm) Reset()              { f.resets++ }

func sampleForm() Form {
	return Form{
		RoomID:    "R1",
		UserName:  "Ana",
		UserEmail: "ana@example.com",
		Area:      "Eng",
		Date:      "2024-05-01",
		StartTime: "09:00",
		EndTime:   "10:00",
	}
}

func TestSubmitSuccessClosesDialogAndResyncs(t *testing.T) {
	var postedBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/bookings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		postedBody = r.PostForm.Encode()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Reserva creada con exito"}`))
	}))
	t.Cleanup(srv.Close)

	form := &recordingForm{dialogOpen: true}
	resyncs := 0
	s := New(srv.URL, time.Second, form, func(context.Context) error {
		resyncs++
		return nil
	})

	if err := s.Submit(context.Background(), sampleForm()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if form.dialogOpen {
		t.Error("dialog should be closed after success")
	}
	if form.resets != 1 {
		t.Errorf("form resets = %d, want 1", form.resets)
	}
	if resyncs != 1 {
		t.Errorf("resyncs = %d, want 1", resyncs)
	}
	for _, want := range []string{"room_id=R1", "user_name=Ana", "booking_date=2024-05-01", "start_time=09%3A00", "end_time=10%3A00"} {
		if !strings.Contains(postedBody, want) {
			t.Errorf("posted body %q missing %q", postedBody, want)
		}
	}
	if strings.Contains(postedBody, "attendees") {
		t.Errorf("empty attendees should be omitted from %q", postedBody)
	}
}

func TestSubmitRejectionKeepsFormState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Room unavailable"}`))
	}))
	t.Cleanup(srv.Close)

	form := &recordingForm{dialogOpen: true}
	resyncs := 0
	s := New(srv.URL, time.Second, form, func(context.Context) error {
		resyncs++
		return nil
	})

	err := s.Submit(context.Background(), sampleForm())

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *RejectedError, got %v", err)
	}
	if rejected.Detail != "Room unavailable" {
		t.Errorf("detail = %q", rejected.Detail)
	}
	if rejected.Status != http.StatusBadRequest {
		t.Errorf("status = %d", rejected.Status)
	}
	if !form.dialogOpen {
		t.Error("dialog must stay open on rejection")
	}
	if form.resets != 0 {
		t.Error("form must not be cleared on rejection")
	}
	if resyncs != 0 {
		t.Error("no resynchronization on rejection")
	}
}

func TestSubmitRejectionWithoutDetailFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, time.Second, &recordingForm{}, nil)
	err := s.Submit(context.Background(), sampleForm())

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *RejectedError, got %v", err)
	}
	if rejected.Detail == "" {
		t.Error("detail fallback missing")
	}
}

func TestSubmitTransportErrorOnNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	form := &recordingForm{dialogOpen: true}
	s := New(srv.URL, 200*time.Millisecond, form, nil)

	err := s.Submit(context.Background(), sampleForm())

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if !form.dialogOpen || form.resets != 0 {
		t.Error("form state must survive a transport failure")
	}
}

func TestSubmitTransportErrorOnUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, time.Second, &recordingForm{}, nil)
	err := s.Submit(context.Background(), sampleForm())

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}
