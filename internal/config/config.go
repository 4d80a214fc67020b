// Package config provides CLI configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// ErrInvalid marks configuration that cannot be loaded or does not validate.
var ErrInvalid = errors.New("invalid configuration")

// DefaultStateDirName is the state directory created under the user's home.
const DefaultStateDirName = ".ockam"

// Config holds ockam CLI configuration.
type Config struct {
	// COMMS: NATS server fronting the controller services.
	COMMSURL  string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"ockam-cli"`

	// Controller subjects are <prefix>.<service>.
	SubjectPrefix  string        `envconfig:"CONTROLLER_SUBJECT_PREFIX" default:"ockam.controller"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// Local state. A database URL selects the Postgres store over the state directory.
	StateDir         string `envconfig:"OCKAM_STATE_DIR"`
	StateDatabaseURL string `envconfig:"STATE_DATABASE_URL"`
	MigrationPath    string `envconfig:"STATE_MIGRATION_PATH"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("%s - %w: %v", logPrefix, ErrInvalid, err)
	}
	return &c, nil
}

// Validate checks values the CLI cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.COMMSURL) == "" {
		return fmt.Errorf("%s - %w: COMMS_URL is required", logPrefix, ErrInvalid)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - %w: REQUEST_TIMEOUT must be positive", logPrefix, ErrInvalid)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%s - %w: LOG_LEVEL %q is not one of debug, info, warn, error", logPrefix, ErrInvalid, c.LogLevel)
	}
	return nil
}

// ResolveStateDir returns StateDir, defaulting to ~/.ockam.
func (c *Config) ResolveStateDir() (string, error) {
	if c.StateDir != "" {
		return c.StateDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%s - %w: OCKAM_STATE_DIR unset and no home directory: %v", logPrefix, ErrInvalid, err)
	}
	return filepath.Join(home, DefaultStateDirName), nil
}

// SlogLevel maps LogLevel to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
