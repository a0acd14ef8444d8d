package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vulnserve/internal/config"
)

// initToBuffer wires the console core to an in-memory buffer so tests can
// assert on output without touching stdout.
func initToBuffer(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestInitialize(t *testing.T) {
	t.Run("json format emits structured entries", func(t *testing.T) {
		buf := initToBuffer(t, config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		})

		GetLogger().Warn("structured message", zap.String("key", "value"))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be valid JSON")
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "structured message", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("console format is human readable", func(t *testing.T) {
		buf := initToBuffer(t, config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "ConsoleTest",
		})

		GetLogger().Info("hello from the console")

		out := buf.String()
		assert.Contains(t, out, "INFO")
		assert.Contains(t, out, "hello from the console")
	})

	t.Run("level below threshold is dropped", func(t *testing.T) {
		buf := initToBuffer(t, config.LoggerConfig{
			Level:       "warn",
			Format:      "json",
			ServiceName: "LevelTest",
		})

		GetLogger().Info("too quiet to be heard")
		assert.Empty(t, buf.String())
	})

	t.Run("log file receives a copy when configured", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "service.log")
		initToBuffer(t, config.LoggerConfig{
			Level:   "debug",
			Format:  "json",
			LogFile: logFile,
			MaxSize: 1,
		})

		GetLogger().Error("this should go to the file")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "this should go to the file")
	})

	t.Run("second initialization is ignored", func(t *testing.T) {
		initToBuffer(t, config.LoggerConfig{Level: "info", Format: "json", ServiceName: "First"})
		first := GetLogger()

		InitializeLogger(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "Second"})
		assert.Same(t, first, GetLogger())
	})
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Before initialization a usable development logger comes back, never nil.
	logger := GetLogger()
	require.NotNil(t, logger)
}
