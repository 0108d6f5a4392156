package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")

	logger, err := Init("debug", "json", path)
	require.NoError(t, err)

	logger.Info("test message", "key", "value", "count", 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"test message"`)
	assert.Contains(t, string(data), `"key":"value"`)
	assert.Contains(t, string(data), `"count":3`)
}

func TestInit_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger, err := Init("nonsense", "json", filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNoopLogger_DiscardsFields(t *testing.T) {
	logger := NewNoopLogger()

	// Odd and non-string field keys must not panic.
	logger.Info("msg", "key", "value", "dangling")
	logger.Warn("msg", 42, "value")
	logger.Error("msg")
}
