package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baserah.log")

	logger, err := New(Options{Outputs: []string{path}})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("turn recorded", zap.String("intent", "greeting"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "turn recorded", entry["msg"])
	assert.Equal(t, "greeting", entry["intent"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewDebugLevel(t *testing.T) {
	logger, err := New(Options{Debug: true, Console: true, Outputs: []string{filepath.Join(t.TempDir(), "debug.log")}})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewRejectsBadOutput(t *testing.T) {
	_, err := New(Options{Outputs: []string{"unknown-scheme://nowhere"}})
	assert.Error(t, err)
}
