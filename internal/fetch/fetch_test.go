package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const (
	bookingsJSON = `[{"id":1,"room_id":"R1","user_name":"Ana","user_email":"ana@example.com","area":"Eng","date":"2024-05-01","start_time":"09:00","end_time":"10:00"}]`
	roomsJSON    = `[{"id":"R1","name":"Sala A","color":"#ff0000"}]`
)

func upstream(t *testing.T, bookingsStatus, roomsStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(bookingsStatus)
		if bookingsStatus == http.StatusOK {
			_, _ = w.Write([]byte(bookingsJSON))
		}
	})
	mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(roomsStatus)
		if roomsStatus == http.StatusOK {
			_, _ = w.Write([]byte(roomsJSON))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSnapshotFetchesBothCollections(t *testing.T) {
	srv := upstream(t, http.StatusOK, http.StatusOK)
	client := NewClient(srv.URL, time.Second)

	snap, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Bookings) != 1 || len(snap.Rooms) != 1 {
		t.Fatalf("snapshot = %d bookings, %d rooms", len(snap.Bookings), len(snap.Rooms))
	}
	if snap.Bookings[0].ID != "1" || snap.Bookings[0].RoomID != "R1" {
		t.Errorf("booking = %+v", snap.Bookings[0])
	}
	if snap.Rooms[0].Name != "Sala A" {
		t.Errorf("room = %+v", snap.Rooms[0])
	}
}

func TestSnapshotAbortsWhenEitherFetchFails(t *testing.T) {
	tests := []struct {
		name           string
		bookingsStatus int
		roomsStatus    int
	}{
		{"bookings endpoint down", http.StatusInternalServerError, http.StatusOK},
		{"rooms endpoint down", http.StatusOK, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := upstream(t, tt.bookingsStatus, tt.roomsStatus)
			client := NewClient(srv.URL, time.Second)

			snap, err := client.Snapshot(context.Background())
			if err == nil {
				t.Fatal("expected join failure")
			}
			if snap.Bookings != nil || snap.Rooms != nil {
				t.Fatalf("expected empty snapshot on failure, got %+v", snap)
			}

			var ferr *FetchError
			if !errors.As(err, &ferr) {
				t.Fatalf("expected *FetchError, got %T", err)
			}
			if ferr.Status < 500 {
				t.Errorf("status = %d", ferr.Status)
			}
		})
	}
}

func TestFetchErrorOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Bookings(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchErrorOnUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, 200*time.Millisecond)
	_, err := client.Rooms(context.Background())

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if ferr.Status != 0 {
		t.Errorf("transport failures should carry no status, got %d", ferr.Status)
	}
}
