package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"console format", &Config{Level: "debug", Format: "console", Output: "stdout", TimeFormat: "15:04:05"}},
		{"json format", &Config{Level: "info", Format: "json", Output: "stderr", TimeFormat: "15:04:05"}},
		{"unknown level falls back", &Config{Level: "shouting", Format: "json", Output: "stdout", TimeFormat: "15:04:05"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
			log.Info("stock level updated")
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.level))
		})
	}
}

func TestSinkForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.log")

	sink := sinkFor(path)
	require.NotNil(t, sink)

	_, err := sink.Write([]byte("ledger entry appended\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ledger entry appended")
}

func TestSinkForUnwritablePathFallsBack(t *testing.T) {
	sink := sinkFor("/nonexistent-dir/stock.log")
	require.NotNil(t, sink)
}

func TestSync(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "out.log"), TimeFormat: "15:04:05"})
	require.NoError(t, err)
	log.Info("flushing")
	assert.NoError(t, Sync(log))
}

func TestLogFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movements.log")
	log, err := New(&Config{Level: "debug", Format: "json", Output: path, TimeFormat: "15:04:05"})
	require.NoError(t, err)

	log.Info("stock received", zap.String("batch_number", "LOT-2024-001"))
	require.NoError(t, Sync(log))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stock received")
	assert.Contains(t, string(data), "LOT-2024-001")
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.log")
	log, err := New(&Config{Level: "warn", Format: "json", Output: path, TimeFormat: "15:04:05"})
	require.NoError(t, err)

	log.Debug("batch allocation detail")
	log.Info("stock adjusted")
	log.Warn("stock below reorder point")
	require.NoError(t, Sync(log))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "batch allocation detail")
	assert.NotContains(t, string(data), "stock adjusted")
	assert.Contains(t, string(data), "stock below reorder point")
}
