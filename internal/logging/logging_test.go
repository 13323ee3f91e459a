package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtimit/gamify-product-lab/internal/config"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Level("debug"))
	assert.Equal(t, slog.LevelInfo, Level("info"))
	assert.Equal(t, slog.LevelError, Level("error"))
	assert.Equal(t, slog.LevelWarn, Level("warn"))
	assert.Equal(t, slog.LevelWarn, Level(""))
}

func TestJSONHandlerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "info"
	log := NewWriter(&buf, cfg)

	log.Debug("hidden")
	log.Info("level up", "new_level", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "level up", rec["msg"])
	assert.Equal(t, "lab", rec["app"])
	assert.EqualValues(t, 3, rec["new_level"])
}

func TestTextHandlerIsDefault(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, config.Default()).Warn("careful")
	assert.Contains(t, buf.String(), "msg=careful")
}
