package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SnapshotConfig controls the headless capture of the kiosk page for
// room-door displays.
type SnapshotConfig struct {
	// Enabled toggles capture after each refresh cycle.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Output is the PNG path served back at /preview.png.
	Output string `yaml:"output" json:"output"`
	// Width / Height are the emulated viewport dimensions in pixels.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the calendar UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// UpstreamURL is the base URL of the booking API this service fronts
	// (GET /api/bookings, GET /api/rooms, POST /api/bookings).
	UpstreamURL string `yaml:"upstream_url" json:"upstream_url"`

	// RequestTimeoutSec bounds each upstream HTTP call.
	RequestTimeoutSec int `yaml:"request_timeout_sec" json:"request_timeout_sec"`

	// RefreshCron is a cron-style schedule string (e.g. "*/5 * * * *")
	// driving periodic resynchronization of the event set.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Locale is the calendar widget locale (e.g. "es").
	Locale string `yaml:"locale" json:"locale"`

	// SlotMinTime / SlotMaxTime bound the visible time grid ("HH:MM:SS").
	SlotMinTime string `yaml:"slot_min_time" json:"slot_min_time"`
	SlotMaxTime string `yaml:"slot_max_time" json:"slot_max_time"`

	// NarrowBreakpointPx is the viewport width below which the calendar
	// falls back to the single-day view.
	NarrowBreakpointPx int `yaml:"narrow_breakpoint_px" json:"narrow_breakpoint_px"`

	// Snapshot configures the headless PNG capture of the kiosk page.
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:             "127.0.0.1:8080",
		UpstreamURL:        "http://127.0.0.1:8000",
		RequestTimeoutSec:  15,
		RefreshCron:        "*/5 * * * *",
		Locale:             "es",
		SlotMinTime:        "05:00:00",
		SlotMaxTime:        "22:00:00",
		NarrowBreakpointPx: 768,
		Snapshot: SnapshotConfig{
			Enabled: false,
			Output:  "/var/lib/roomcal/preview.png",
			Width:   1280,
			Height:  800,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.UpstreamURL == "" {
		c.UpstreamURL = def.UpstreamURL
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = def.RequestTimeoutSec
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.SlotMinTime == "" {
		c.SlotMinTime = def.SlotMinTime
	}
	if c.SlotMaxTime == "" {
		c.SlotMaxTime = def.SlotMaxTime
	}
	if c.NarrowBreakpointPx <= 0 {
		c.NarrowBreakpointPx = def.NarrowBreakpointPx
	}
	if c.Snapshot.Output == "" {
		c.Snapshot.Output = def.Snapshot.Output
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = def.Snapshot.Width
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = def.Snapshot.Height
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600,
// parent directory created) and returned. Otherwise the file is read,
// unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg alongside the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms,
// creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".roomcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
