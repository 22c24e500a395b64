package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/vulndeck/vulndeck-cli/internal/config"
)

// -- Test Helper Functions --

// syncBuffer adapts a bytes.Buffer to zapcore.WriteSyncer so tests can
// initialize the logger against an in-memory sink.
type syncBuffer struct {
	bytes.Buffer
}

func (s *syncBuffer) Sync() error { return nil }

func initTestLogger(t *testing.T, cfg config.LoggerConfig) *syncBuffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(cfg, zapcore.Lock(buf))
	return buf
}

// -- Test Cases --

func TestInitializeLogger(t *testing.T) {
	t.Run("should initialize console logger with colors", func(t *testing.T) {
		buf := initTestLogger(t, config.LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "vulndeck",
			Colors:      config.ColorConfig{Info: "green"},
		})

		GetLogger().Info("hello from the console")
		out := buf.String()
		assert.Contains(t, out, "hello from the console")
		assert.Contains(t, out, "\x1b[32mINFO\x1b[0m", "info level should be colorized green")
		assert.Contains(t, out, "vulndeck.", "service name should prefix the entry")
	})

	t.Run("should initialize json logger with structured fields", func(t *testing.T) {
		buf := initTestLogger(t, config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "vulndeck",
		})

		GetLogger().Info("structured entry")
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "structured entry", entry["msg"])
		assert.Equal(t, "vulndeck", entry["logger"])
	})

	t.Run("should respect the configured level", func(t *testing.T) {
		buf := initTestLogger(t, config.LoggerConfig{Level: "warn", Format: "json"})

		GetLogger().Info("suppressed")
		GetLogger().Warn("emitted")
		out := buf.String()
		assert.NotContains(t, out, "suppressed")
		assert.Contains(t, out, "emitted")
	})

	t.Run("should fall back to info on an invalid level", func(t *testing.T) {
		buf := initTestLogger(t, config.LoggerConfig{Level: "nonsense", Format: "json"})

		GetLogger().Debug("too low")
		GetLogger().Info("visible")
		assert.NotContains(t, buf.String(), "too low")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		buf := initTestLogger(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"})

		second := &syncBuffer{}
		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "second"}, zapcore.Lock(second))

		GetLogger().Info("routed")
		assert.Contains(t, buf.String(), "routed")
		assert.Empty(t, second.String(), "a second Initialize must be a no-op")
	})

	t.Run("should write a json file core when a log file is configured", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "vulndeck.log")
		initTestLogger(t, config.LoggerConfig{
			Level:   "info",
			Format:  "console",
			LogFile: logPath,
			MaxSize: 1,
		})

		GetLogger().Info("persisted line")
		Sync()

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		line := strings.TrimSpace(string(data))
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "persisted line", entry["msg"])
	})
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger)
	// The fallback is usable before Initialize has ever run.
	logger.Debug("fallback logger works")
}
