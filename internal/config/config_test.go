package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.NarrowBreakpointPx != 768 {
		t.Errorf("breakpoint = %d", cfg.NarrowBreakpointPx)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perms = %o, want 0600", perm)
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "upstream_url: http://bookings.internal:9000\nlocale: en\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UpstreamURL != "http://bookings.internal:9000" {
		t.Errorf("upstream = %q", cfg.UpstreamURL)
	}
	if cfg.Locale != "en" {
		t.Errorf("locale = %q", cfg.Locale)
	}
	if cfg.RefreshCron == "" || cfg.SlotMinTime == "" || cfg.RequestTimeoutSec <= 0 {
		t.Errorf("defaults not filled: %+v", cfg)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.UpstreamURL = "http://example.test"
	cfg.BasicAuth = &BasicAuthConfig{Username: "kiosk", Password: "secret"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.UpstreamURL != "http://example.test" {
		t.Errorf("upstream = %q", loaded.UpstreamURL)
	}
	if loaded.BasicAuth == nil || loaded.BasicAuth.Username != "kiosk" {
		t.Errorf("basic auth = %+v", loaded.BasicAuth)
	}
}
