package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/verdant-hollow/internal/config"
)

func TestSetup_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := setup(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)
	WithSession(log, "abc", "Ayla").Info("Turn resolved", "node", "goblin")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Turn resolved", entry["msg"])
	assert.Equal(t, "abc", entry["session_id"])
	assert.Equal(t, "Ayla", entry["player"])
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := setup(&config.Config{Environment: "development", LogLevel: slog.LevelWarn}, &buf)
	log.Info("quiet")
	assert.Empty(t, buf.String())

	WithError(log, errors.New("boom")).Warn("loud")
	assert.Contains(t, buf.String(), "error=boom")
}
