package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultDebounceMS = 1000
	DefaultProgram    = "cargo"
	DefaultLogLevel   = "warn"
)

// DefaultLogFile is the log destination used by watch mode.
var DefaultLogFile = filepath.Join(Dir, "rustlings.log")

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Watch: Watch{
			DebounceMS: DefaultDebounceMS,
		},
		Toolchain: Toolchain{
			Program: DefaultProgram,
		},
		Log: Log{
			Level: DefaultLogLevel,
			File:  DefaultLogFile,
		},
	}
}

// Debounce returns the watch debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// LoadConfig reads and parses .rustlings/config.yaml from the given base path.
// If the file doesn't exist, returns default config.
// Applies defaults for any missing fields.
func LoadConfig(basePath string) (*Config, error) {
	configPath := filepath.Join(basePath, Dir, ConfigFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.Watch.DebounceMS <= 0 {
		return ValidationError{Field: "watch.debounce_ms", Message: "must be positive"}
	}
	if cfg.Verify.MaxWorkers < 0 {
		return ValidationError{Field: "verify.max_workers", Message: "must not be negative"}
	}
	if cfg.Toolchain.Program == "" {
		return ValidationError{Field: "toolchain.program", Message: "must not be empty"}
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ValidationError{Field: "log.level", Message: "must be one of debug, info, warn, error"}
	}
	if cfg.Log.File == "" {
		return ValidationError{Field: "log.file", Message: "must not be empty"}
	}
	return nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
