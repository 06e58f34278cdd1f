package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/loopsim/internal/config"
)

func TestConsoleLogger(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "debug", Format: "console", ServiceName: "loopsim"}, zapcore.AddSync(&buf))

	GetLogger().Info("run finished", zap.Float64("v0", 10.55))
	Sync()

	out := buf.String()
	assert.Contains(t, out, colorGreen+"INFO"+colorReset)
	assert.Contains(t, out, "loopsim.")
	assert.Contains(t, out, "run finished")
	assert.Contains(t, out, `"v0": 10.55`)
}

func TestLevelFiltering(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, zapcore.AddSync(&buf))

	GetLogger().Info("hidden")
	GetLogger().Warn("shown")
	Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(&buf))

	GetLogger().Debug("hidden")
	GetLogger().Info("shown")
	Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFileCoreWritesJSON(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	path := filepath.Join(t.TempDir(), "loopsim.log")
	var console bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&console))

	GetLogger().Info("saved run", zap.String("run_id", "coaster_1"))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "coaster_1", entry["run_id"])
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	var first, second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))

	GetLogger().Info("once")
	Sync()
	assert.Contains(t, first.String(), "once")
	assert.Empty(t, second.String())
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
	Sync()
}
