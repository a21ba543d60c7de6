package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poskit/poskit/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 10, cfg.Join.BackoffMS)
	assert.Equal(t, 1000, cfg.Join.BackoffMaxMS)
	assert.False(t, cfg.Zombies.AutoReap)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("POSKIT_JOIN_BACKOFF_MS", "25")
	t.Setenv("POSKIT_JOIN_BACKOFF_MAX_MS", "400")
	t.Setenv("POSKIT_AUTO_REAP", "true")
	t.Setenv("POSKIT_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 25*time.Millisecond, cfg.Join.Backoff())
	assert.Equal(t, 400*time.Millisecond, cfg.Join.BackoffMax())
	assert.True(t, cfg.Zombies.AutoReap)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("POSKIT_JOIN_BACKOFF_MS", "not-a-number")

	cfg := config.LoadOrDefault()
	assert.Equal(t, 10, cfg.Join.BackoffMS)
}
