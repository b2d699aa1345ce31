package farmauth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/agrisuite/farmauth/internal/timex"
)

// Config holds the settings the embedding application supplies at startup.
//
// Fields:
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - MinPasswordLength: shortest password accepted at registration.
//   - SessionValidity: lifetime of an issued session; expiry is fixed-window.
//   - LockoutThreshold: failed logins inside LockoutWindow before further
//     attempts are refused. Zero disables lockout.
//   - LockoutWindow: the sliding window the threshold is counted over.
//   - Logger: optional logger; when nil the library logs JSON to stdout.
type Config struct {
	DatabaseDSN       string
	MinPasswordLength int
	SessionValidity   time.Duration
	LockoutThreshold  int
	LockoutWindow     time.Duration
	Logger            *slog.Logger
}

// LoadDefaults populates Config with the documented defaults: 6-character
// minimum passwords, 7-day sessions, and lockout after 5 failures in
// 15 minutes.
func (c *Config) LoadDefaults() {
	c.MinPasswordLength = 6
	c.SessionValidity = 7 * 24 * time.Hour
	c.LockoutThreshold = 5
	c.LockoutWindow = 15 * time.Minute
}

// jsonConfig is an intermediate DTO for reading JSON configuration files.
// Durations accept either strings such as "168h" or integer nanoseconds.
type jsonConfig struct {
	DatabaseDSN       string         `json:"database_dsn"`
	MinPasswordLength int            `json:"min_password_length"`
	SessionValidity   timex.Duration `json:"session_validity"`
	LockoutThreshold  int            `json:"lockout_threshold"`
	LockoutWindow     timex.Duration `json:"lockout_window"`
}

// LoadConfig builds a Config by applying defaults and then overlaying values
// from the given JSON file. An empty path returns just the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path == "" {
		return cfg, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	jc := &jsonConfig{}
	if err := json.Unmarshal(file, jc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.MinPasswordLength > 0 {
		cfg.MinPasswordLength = jc.MinPasswordLength
	}
	if jc.SessionValidity.Duration > 0 {
		cfg.SessionValidity = jc.SessionValidity.Duration
	}
	if jc.LockoutThreshold > 0 {
		cfg.LockoutThreshold = jc.LockoutThreshold
	}
	if jc.LockoutWindow.Duration > 0 {
		cfg.LockoutWindow = jc.LockoutWindow.Duration
	}

	return cfg, nil
}

// withDefaults fills in zero-valued fields so a partially populated Config
// still behaves sensibly.
func (c Config) withDefaults() Config {
	if c.MinPasswordLength == 0 {
		c.MinPasswordLength = 6
	}
	if c.SessionValidity == 0 {
		c.SessionValidity = 7 * 24 * time.Hour
	}
	if c.LockoutWindow == 0 {
		c.LockoutWindow = 15 * time.Minute
	}
	return c
}
