// Package config loads server configuration from a TOML file, layering
// file values over built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/reflow-dev/reflow/pkg/live"
)

// fileConfig mirrors the TOML schema. Durations are given in seconds.
type fileConfig struct {
	Addr            string `toml:"addr"`
	FlushLimit      int    `toml:"flush_limit"`
	ReadTimeoutSec  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSec int    `toml:"write_timeout_seconds"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
}

// Config is the resolved server configuration.
type Config struct {
	Server    *live.Config
	LogLevel  string
	LogFormat string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:    live.DefaultConfig(),
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads path and overlays its values onto the defaults. Only keys
// present in the file override; absent keys keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Server.Address = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("flush_limit") {
		cfg.Server.FlushLimit = raw.FlushLimit
	}
	if meta.IsDefined("read_timeout_seconds") {
		cfg.Server.ReadTimeout = time.Duration(raw.ReadTimeoutSec) * time.Second
	}
	if meta.IsDefined("write_timeout_seconds") {
		cfg.Server.WriteTimeout = time.Duration(raw.WriteTimeoutSec) * time.Second
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(raw.LogFormat))
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config: unknown keys: %s", strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	if c.Server.FlushLimit < 1 {
		return fmt.Errorf("config: flush_limit must be at least 1, got %d", c.Server.FlushLimit)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("config: read_timeout_seconds must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("config: write_timeout_seconds must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}

// SlogLevel maps the configured level name onto a slog level string
// consumers can parse with slog.Level.UnmarshalText.
func (c *Config) SlogLevel() string {
	return strings.ToUpper(c.LogLevel)
}
