package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "irontodo.log")
	l, err := New(Config{Level: zapcore.InfoLevel, FilePath: path})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("task added", F("id", "abc"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "task added")
	assert.Contains(t, out, `"id": "abc"`)
	assert.NotContains(t, out, "hidden")
}

func TestNew_RotatesOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irontodo.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0644))
	require.NoError(t, os.WriteFile(path+".1", []byte("older"), 0644))

	l, err := New(Config{Level: zapcore.InfoLevel, FilePath: path, MaxSize: 50, MaxBackups: 3})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Len(t, backup, 100)

	older, err := os.ReadFile(path + ".2")
	require.NoError(t, err)
	assert.Equal(t, "older", string(older))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestGlobalLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.log")
	require.NoError(t, Init(Config{Level: zapcore.DebugLevel, FilePath: path}))

	Debug("debug line")
	Warn("warn line", F("count", 2))
	require.NoError(t, Close())

	// After Close the global logger is a no-op
	Info("dropped")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "debug line")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "logger_test.go")
	assert.NotContains(t, out, "dropped")
}

func TestFile_RotatesWhileRunning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")

	l, err := New(Config{Level: zapcore.InfoLevel, FilePath: path, MaxSize: 300, MaxBackups: 2})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		l.Info("HTTP request", zap.Int("status", 200), zap.Int("n", i))
	}
	require.NoError(t, l.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(300))

	for _, backup := range []string{path + ".1", path + ".2"} {
		_, err := os.Stat(backup)
		assert.NoError(t, err, backup)
	}
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(current), "19}")
}
