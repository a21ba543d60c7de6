// Package config provides 12-factor runtime configuration for the library.
//
// Configuration is loaded from environment variables with defaults matching
// the documented behavior: Join backs off from 10ms doubling to a 1s cap,
// zombie auto-reaping is left at the kernel default, and logging is off.
//
// Environment Variables:
//   - POSKIT_JOIN_BACKOFF_MS, POSKIT_JOIN_BACKOFF_MAX_MS
//   - POSKIT_AUTO_REAP
//   - POSKIT_LOG_LEVEL, POSKIT_LOG_DEV
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration.
type Config struct {
	Join    JoinConfig
	Zombies ZombieConfig
	Logging LogConfig
}

// JoinConfig controls the backoff polling loop used to wait for children.
type JoinConfig struct {
	BackoffMS    int `envconfig:"POSKIT_JOIN_BACKOFF_MS" default:"10"`
	BackoffMaxMS int `envconfig:"POSKIT_JOIN_BACKOFF_MAX_MS" default:"1000"`
}

// ZombieConfig controls the process-wide SIGCHLD disposition applied at
// first use. AutoReap true means terminated children are reaped by the
// kernel instead of accumulating as zombies.
type ZombieConfig struct {
	AutoReap bool `envconfig:"POSKIT_AUTO_REAP" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"POSKIT_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"POSKIT_LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Join: JoinConfig{
			BackoffMS:    10,
			BackoffMaxMS: 1000,
		},
		Zombies: ZombieConfig{
			AutoReap: false,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Backoff returns the initial backoff delay.
func (c JoinConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

// BackoffMax returns the backoff delay cap.
func (c JoinConfig) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxMS) * time.Millisecond
}
