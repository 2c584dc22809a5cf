// Package config loads the dreamsearch server configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Protocol-Lattice/dreamsearch/internal/logging"
	"github.com/Protocol-Lattice/dreamsearch/registry"
)

// Config holds server settings.
type Config struct {
	Addr            string `yaml:"addr"`
	Style           string `yaml:"style"`     // default decoration policy; empty picks per output
	LogLevel        string `yaml:"log_level"` // debug, info, warn, error
	ReadLimit       int64  `yaml:"read_limit"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		Style:           "",
		LogLevel:        "info",
		ReadLimit:       4096,
		ShutdownTimeout: "5s",
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DREAMSEARCH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DREAMSEARCH_STYLE"); v != "" {
		c.Style = v
	}
	if v := os.Getenv("DREAMSEARCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Style != "" {
		if _, err := registry.Lookup(c.Style); err != nil {
			return fmt.Errorf("invalid style: %w", err)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("read_limit must be positive, got %d", c.ReadLimit)
	}
	if _, err := c.Shutdown(); err != nil {
		return err
	}
	return nil
}

// Shutdown returns the parsed shutdown timeout.
func (c *Config) Shutdown() (time.Duration, error) {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown_timeout %q: %w", c.ShutdownTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("shutdown_timeout must be positive, got %s", d)
	}
	return d, nil
}
