// Package config loads glue settings from an optional JSON file and
// applies environment variable overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the tool settings. Every field has a JSON key for the
// config file and an env tag for the override layer.
type Config struct {
	// TimeoutSec bounds each HTTP request; 0 disables the timeout.
	TimeoutSec int `json:"timeout_sec" env:"GLUE_TIMEOUT_SEC"`

	// HistoryFile is where the interactive shell persists history.
	HistoryFile string `json:"history_file" env:"GLUE_HISTORY_FILE"`

	// NoColor disables ANSI coloring even on a TTY.
	NoColor bool `json:"no_color" env:"GLUE_NO_COLOR"`

	// Verbose prints a request-info line for every dispatched node.
	Verbose bool `json:"verbose" env:"GLUE_VERBOSE"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HistoryFile: filepath.Join(os.TempDir(), ".glue_history"),
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".glue", "config.json")
}

// LoadConfig reads the JSON config at path (a missing file is fine)
// and applies environment overrides. Malformed files or environment
// values are errors.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// no file: defaults + env
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// Timeout returns TimeoutSec as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}
