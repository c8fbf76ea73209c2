package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ottkit/tunerd/internal/config"
)

func TestNewLoggerWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(config.LoggingConfig{
		Level:      "info",
		Format:     "json",
		TimeFormat: time.RFC3339,
	}, &buf)

	log.Info("channel stored", slog.Int64("id", 7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "channel stored", entry["msg"])
	assert.Equal(t, float64(7), entry["id"])
	assert.NotEmpty(t, entry["time"])
}

func TestNewLoggerWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)

	log.Debug("scan started")
	assert.Contains(t, buf.String(), "scan started")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	log = WithApp(log, "tunerd")
	log = WithComponent(log, "scanner")
	log = WithError(log, errors.New("boom"))
	log.Info("event")

	out := buf.String()
	assert.Contains(t, out, "app=tunerd")
	assert.Contains(t, out, "component=scanner")
	assert.Contains(t, out, "error=boom")
}

func TestWithErrorNil(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	WithError(log, nil).Info("event")
	assert.False(t, strings.Contains(buf.String(), "error="))
}
