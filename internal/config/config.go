// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a .env file, an optional YAML file and PLANTILLA_ env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sigmotoa/plantilla/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Workers bounds how many files are validated concurrently.
	Workers int `koanf:"workers"`

	// PlayerIDStart and MatchIDStart seed the id sequences; the first
	// auto-assigned id is start+1.
	PlayerIDStart int `koanf:"player_id_start"`
	MatchIDStart  int `koanf:"match_id_start"`

	// TrackedKey and OpponentKey name the entries of a penalty result.
	TrackedKey  string `koanf:"tracked_key"`
	OpponentKey string `koanf:"opponent_key"`

	// Timezone is the IANA zone in which "today" is evaluated. "Local"
	// uses the host zone.
	Timezone string `koanf:"timezone"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Workers:       runtime.NumCPU(),
		PlayerIDStart: 0,
		MatchIDStart:  0,
		TrackedKey:    model.DefaultTrackedKey,
		OpponentKey:   model.DefaultOpponentKey,
		Timezone:      "Local",
	}
}

// Validate checks field domains.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.PlayerIDStart < 0 || c.MatchIDStart < 0 {
		return fmt.Errorf("%w: id starts must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.TrackedKey) == "" || strings.TrimSpace(c.OpponentKey) == "" {
		return fmt.Errorf("%w: penalty keys must not be empty", ErrInvalidConfig)
	}
	if c.TrackedKey == c.OpponentKey {
		return fmt.Errorf("%w: penalty keys must differ, both are %q", ErrInvalidConfig, c.TrackedKey)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// JSONLogs reports whether logs should be emitted as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}
