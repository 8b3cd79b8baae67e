package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Defaults for kiosk snapshot capture.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 800
	DefaultTimeout = 30 * time.Second

	// readySelector is the attribute the kiosk page sets on its root once
	// the event set has been fetched and painted.
	readySelector = `[data-ready="true"]`
)

// Options parameterizes one snapshot of the served calendar page.
type Options struct {
	// URL of the kiosk page, e.g. "http://127.0.0.1:8080/".
	URL string
	// OutputPath is where the PNG is written; it is later served at
	// /preview.png.
	OutputPath string
	// Width / Height are the emulated viewport dimensions. The width also
	// drives the responsive view the page renders, so a narrow snapshot
	// yields the single-day grid.
	Width  int
	Height int
	// Timeout bounds the whole capture.
	Timeout time.Duration
}

// SnapshotPNG drives a headless Chromium to the kiosk page, waits for the
// data-ready signal and writes a full-page PNG screenshot. Intended for
// room-door displays that can show an image but not run the live page.
func SnapshotPNG(parent context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	err := chromedp.Run(ctx, chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		// Give the widget a beat to finish its final paint.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	})
	if err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: write PNG: %w", err)
	}
	return nil
}
