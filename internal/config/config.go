// Package config provides configuration management for the launcher.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for the launcher.
type Config struct {
	// Resources
	ResourceDir     string `json:"resource_dir"`
	DataDir         string `json:"data_dir"`
	RuntimeOverride string `json:"runtime_override"`
	EntryOverride   string `json:"entry_override"`

	// Health gating
	HealthInterval time.Duration `json:"health_interval"`
	HealthAttempts int           `json:"health_attempts"`

	// Teardown
	StopTimeout time.Duration `json:"stop_timeout"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text

	// Surfaces
	TUIEnabled     bool `json:"tui_enabled"`
	HistoryEnabled bool `json:"history_enabled"`

	// Diagnostic modes
	ShowVersion bool `json:"show_version"`
}

// DefaultConfig returns a Config with sensible defaults. The resource
// directory defaults to the executable's directory, matching how the server
// bundle is laid out next to the launcher binary.
func DefaultConfig() *Config {
	resourceDir := "."
	if exe, err := os.Executable(); err == nil {
		resourceDir = filepath.Dir(exe)
	}

	dataDir := "."
	if base, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(base, "stacklume")
	}

	return &Config{
		ResourceDir: resourceDir,
		DataDir:     dataDir,

		HealthInterval: 500 * time.Millisecond,
		HealthAttempts: 80,

		StopTimeout: 5 * time.Second,

		MetricsAddr: "", // disabled
		Verbose:     false,
		LogFormat:   "json",

		TUIEnabled:     true,
		HistoryEnabled: true,
	}
}
