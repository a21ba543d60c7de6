package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poskit/poskit/internal/logging"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := logging.New(logging.Config{Level: "loud", OutputPaths: []string{"stderr"}})
	assert.Error(t, err)
}

func TestNewDevelopment(t *testing.T) {
	logger := logging.NewDevelopment()
	require.NotNil(t, logger)
	logger.Debug("development logger active")
}

func TestSetAndRestore(t *testing.T) {
	original := logging.L()
	defer logging.Set(original)

	custom := logging.NewDefault()
	logging.Set(custom)
	assert.Same(t, custom, logging.L())

	// nil restores the no-op logger rather than panicking call sites.
	logging.Set(nil)
	require.NotNil(t, logging.L())
	logging.L().Info("no-op sink")
}
