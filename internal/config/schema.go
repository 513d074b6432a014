package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Config holds invoicedesk configuration.
// Stored at: {home}/config.yaml
type Config struct {
	// ServerURL is the base URL of the extraction service (supports ${ENV_VAR} syntax).
	ServerURL    string        `mapstructure:"server_url" yaml:"server_url"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`             // Per-request HTTP timeout
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"` // How long `wait` polls
	Samples      []string      `mapstructure:"samples" yaml:"samples"`             // Sample names offered to users
	ExportDir    string        `mapstructure:"export_dir" yaml:"export_dir"`       // Empty means {home}/exports
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`         // debug, info, warn, error
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    "http://localhost:8000",
		Timeout:      10 * time.Minute,
		ReadyTimeout: 30 * time.Second,
		Samples:      []string{"sample.pdf", "test.pdf"},
		LogLevel:     "info",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server_url %q: scheme must be http or https", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server_url %q: missing host", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.ReadyTimeout < 0 {
		return fmt.Errorf("ready_timeout must not be negative, got %s", c.ReadyTimeout)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel. An empty level means info.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	name := strings.TrimSpace(c.LogLevel)
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	return level, nil
}
