package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerWithCore(LogLevelWarn, core)

	l.Error("failed %s", "EDA.xlsx")
	l.Warn("skipped subject %s: %s", "exper3", "missing column")
	l.Info("not shown")
	l.Debug("not shown")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "failed EDA.xlsx", entries[0].Message)
	assert.Equal(t, "skipped subject exper3: missing column", entries[1].Message)
}

func TestLogger_TraceAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerWithCore(LogLevelTrace, core).With("run_id", "r1")

	l.Trace("pair %d", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[TRACE] pair 3", entries[0].Message)
	assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
	assert.Equal(t, LogLevelTrace, l.GetLevel())
}

func TestNewFileLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "edd.log")
	l, err := NewFileLogger(LogLevelInfo, FileSink{Path: path, MaxSize: 1})
	require.NoError(t, err)

	l.Info("resampled %d subjects", 39)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"resampled 39 subjects"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
}
