package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the non-secret runtime settings.
//
// Credentials (API token, bot token, chat id) never live here; they are
// loaded from the environment exactly once at startup (see env.go).
//
// All duration fields are Go duration strings (e.g. "10s", "10m").
type Config struct {
	Practicum PracticumConfig `json:"practicum"`
	Notify    NotifyConfig    `json:"notify"`
	Heartbeat HeartbeatConfig `json:"heartbeat"`
	Logging   LoggingConfig   `json:"logging"`
}

// PracticumConfig controls the homework-status polling.
type PracticumConfig struct {
	// Endpoint overrides the default homework_statuses URL (tests, staging).
	Endpoint string `json:"endpoint,omitempty"`

	// PollInterval is the fixed wait between cycles. Default: "10m".
	PollInterval string `json:"poll_interval,omitempty"`

	// RequestTimeout bounds one API request. Default: "10s".
	RequestTimeout string `json:"request_timeout,omitempty"`
}

// NotifyConfig controls outbound Telegram sends.
type NotifyConfig struct {
	// RatePerSec caps sends per second (token bucket). Default: 1.
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// HeartbeatConfig controls the optional liveness message.
//
// Schedule is a cron expression (5-field or @every/@daily descriptors).
// Empty means disabled.
type HeartbeatConfig struct {
	Schedule string `json:"schedule,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

const (
	DefaultPollInterval   = 10 * time.Minute
	DefaultRequestTimeout = 10 * time.Second
	DefaultRatePerSec     = 1
)

// Default returns the config used when no settings file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
	}
}

// PollInterval returns the parsed poll interval or the default.
func (c *Config) PollInterval() (time.Duration, error) {
	return parseDuration("practicum.poll_interval", c.Practicum.PollInterval, DefaultPollInterval)
}

// RequestTimeout returns the parsed request timeout or the default.
func (c *Config) RequestTimeout() (time.Duration, error) {
	return parseDuration("practicum.request_timeout", c.Practicum.RequestTimeout, DefaultRequestTimeout)
}

// parseDuration decodes one duration field from the settings file.
// Empty (or "0s") means "use the default"; negatives are rejected.
func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: bad duration %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", field)
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}

// RatePerSec returns the send rate cap or the default.
func (c *Config) RatePerSec() int {
	if c.Notify.RatePerSec <= 0 {
		return DefaultRatePerSec
	}
	return c.Notify.RatePerSec
}

// Validate rejects settings that would break at runtime.
func (c *Config) Validate() error {
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	return nil
}
