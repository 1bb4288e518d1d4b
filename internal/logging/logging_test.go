package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "omni.log")
	l, err := NewLogger(Config{Level: INFO, OutputFile: logFile, JSONFormat: true})
	require.NoError(t, err)
	defer l.Close()

	l.Info("hello", "key", "value")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "value")
}

func TestNewLoggerStdoutOnlyWithoutOutputFile(t *testing.T) {
	l, err := NewLogger(Config{Level: DEBUG})
	require.NoError(t, err)
	defer l.Close()
	assert.Nil(t, l.file)
}

func TestNewLoggerAppliesDefaults(t *testing.T) {
	l, err := NewLogger(Config{})
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, int64(10*1024*1024), l.config.MaxSize)
	assert.Equal(t, 3, l.config.MaxBackups)
}

func TestRotateIfNeededRotatesOversizedFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "omni.log")
	require.NoError(t, os.WriteFile(logFile, make([]byte, 100), 0644))

	l, err := NewLogger(Config{OutputFile: logFile, MaxSize: 10, MaxBackups: 2})
	require.NoError(t, err)
	defer l.Close()

	_, err = os.Stat(logFile + ".1")
	assert.NoError(t, err, "oversized log file should be rotated to .1 on open")
}

func TestRotateIfNeededLeavesSmallFileAlone(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "omni.log")
	require.NoError(t, os.WriteFile(logFile, []byte("tiny"), 0644))

	l, err := NewLogger(Config{OutputFile: logFile, MaxSize: 1024 * 1024})
	require.NoError(t, err)
	defer l.Close()

	_, err = os.Stat(logFile + ".1")
	assert.True(t, os.IsNotExist(err))
}

func TestToSlogLevelMapsFatalToError(t *testing.T) {
	l := &Logger{}
	assert.Equal(t, l.toSlogLevel(FATAL).String(), l.toSlogLevel(ERROR).String())
}

func TestWithReturnsIndependentLoggerKeepingParentUsable(t *testing.T) {
	l, err := NewLogger(Config{})
	require.NoError(t, err)
	defer l.Close()

	child := l.With("component", "scanner")
	assert.NotSame(t, l, child)
	child.Info("from child")
	l.Info("from parent")
}

func TestCloseIsIdempotent(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "omni.log")
	l, err := NewLogger(Config{OutputFile: logFile})
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}

func TestDefaultConfigTogglesByDebugMode(t *testing.T) {
	debug := DefaultConfig(true)
	assert.Equal(t, DEBUG, debug.Level)
	assert.False(t, debug.JSONFormat)
	assert.True(t, debug.AddSource)

	prod := DefaultConfig(false)
	assert.Equal(t, INFO, prod.Level)
	assert.True(t, prod.JSONFormat)
	assert.False(t, prod.AddSource)
}

func TestDebugConfigIsStdoutOnly(t *testing.T) {
	cfg := DebugConfig()
	assert.Empty(t, cfg.OutputFile)
	assert.Equal(t, DEBUG, cfg.Level)
}

func TestProductionConfigUsesJSONAndLargerRotation(t *testing.T) {
	cfg := ProductionConfig("/var/log/omni.log")
	assert.True(t, cfg.JSONFormat)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxSize)
	assert.Equal(t, "/var/log/omni.log", cfg.OutputFile)
}

func TestLogFileInfoWithoutGlobalLoggerErrors(t *testing.T) {
	_, _, err := LogFileInfo()
	assert.Error(t, err)
}

func TestGetLogFilePathWithoutGlobalLoggerIsEmpty(t *testing.T) {
	assert.Empty(t, GetLogFilePath())
}
