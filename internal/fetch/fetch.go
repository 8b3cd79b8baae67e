package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"roomcal/internal/booking"
	appLog "roomcal/internal/log"
)

// FetchError reports a failed upstream GET: either the request itself
// failed (Status == 0) or the server answered with a non-2xx status.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Snapshot holds both collections of one synchronization pass. The two
// requests are independent, but a Snapshot only exists if both succeeded.
type Snapshot struct {
	Bookings []booking.Booking
	Rooms    []booking.Room
}

// Client talks to the upstream booking API. No response is ever cached:
// every synchronization pass fetches both collections fresh.
type Client struct {
	base string
	http *http.Client
}

// NewClient constructs a Client for the given API base URL, e.g.
// "http://127.0.0.1:8000".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Bookings fetches the current booking collection.
func (c *Client) Bookings(ctx context.Context) ([]booking.Booking, error) {
	var out []booking.Booking
	if err := c.getJSON(ctx, "/api/bookings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rooms fetches the current room collection.
func (c *Client) Rooms(ctx context.Context) ([]booking.Room, error) {
	var out []booking.Room
	if err := c.getJSON(ctx, "/api/rooms", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot fetches bookings and rooms concurrently and joins on both.
// If either request fails the whole snapshot fails; callers must then
// leave their previous render untouched rather than update partially.
func (c *Client) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bookings, err := c.Bookings(gctx)
		if err != nil {
			return err
		}
		snap.Bookings = bookings
		return nil
	})
	g.Go(func() error {
		rooms, err := c.Rooms(gctx)
		if err != nil {
			return err
		}
		snap.Rooms = rooms
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	appLog.Debug("upstream snapshot fetched",
		"bookings", len(snap.Bookings),
		"rooms", len(snap.Rooms),
	)
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return &FetchError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Endpoint: path, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Endpoint: path, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
