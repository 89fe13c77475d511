package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.ResourceDir == "" {
		errs = append(errs, ValidationError{
			Field:   "resources",
			Message: "resource directory is required",
		})
	}

	if cfg.DataDir == "" {
		errs = append(errs, ValidationError{
			Field:   "data_dir",
			Message: "data directory is required",
		})
	}

	if cfg.HealthInterval <= 0 {
		errs = append(errs, ValidationError{
			Field:   "health_interval",
			Message: "must be positive",
		})
	}

	if cfg.HealthAttempts < 1 {
		errs = append(errs, ValidationError{
			Field:   "health_attempts",
			Message: "must be at least 1",
		})
	}

	if cfg.StopTimeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "stop_timeout",
			Message: "must be positive",
		})
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: `must be "json" or "text"`,
		})
	}

	return errors.Join(errs...)
}
