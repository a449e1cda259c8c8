// Package config loads ripple.json, the hub server's configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "ripple.json"

	// DefaultAddr is the default hub listen address.
	DefaultAddr = "localhost:7510"

	// DefaultMaxMessageSize caps inbound sync frames in bytes.
	DefaultMaxMessageSize = 1 << 20

	// DefaultPingInterval is how often idle clients are pinged.
	DefaultPingInterval = 30 * time.Second
)

// Config represents the complete ripple.json configuration.
type Config struct {
	// Addr is the address the hub listens on (host:port).
	Addr string `json:"addr,omitempty"`

	// Metrics enables the /metrics endpoint.
	Metrics bool `json:"metrics,omitempty"`

	// MaxMessageSize caps inbound sync frames in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// PingInterval is the idle-client ping period, e.g. "30s".
	PingInterval string `json:"pingInterval,omitempty"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// New returns a config populated with defaults.
func New() *Config {
	return &Config{
		Addr:           DefaultAddr,
		Metrics:        true,
		MaxMessageSize: DefaultMaxMessageSize,
		PingInterval:   DefaultPingInterval.String(),
		LogLevel:       "info",
	}
}

// Load reads configuration from the specified directory. It looks for
// ripple.json in the directory; a missing file yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills in zero values left by a partial file.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.PingInterval == "" {
		c.PingInterval = DefaultPingInterval.String()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// PingIntervalDuration parses the ping interval.
func (c *Config) PingIntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.PingInterval)
	if err != nil {
		return 0, fmt.Errorf("parse pingInterval %q: %w", c.PingInterval, err)
	}
	return d, nil
}

// Path returns the path where the config was loaded from, or "" when the
// defaults were used.
func (c *Config) Path() string {
	return c.configPath
}
