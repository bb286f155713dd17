package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, 500*time.Millisecond, cfg.DeleteDelay)
	assert.Equal(t, "123456", cfg.SeedUsers["ragul"])
}

func TestLoadFrom_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
confirm_delete: false
delete_delay: 250ms
store: memory
log_level: DEBUG
seed_users:
  demo: demo
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.False(t, cfg.ConfirmDelete)
	assert.Equal(t, 250*time.Millisecond, cfg.DeleteDelay)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "demo", cfg.SeedUsers["demo"])

	// Unset fields keep their defaults
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Store = "postgres"
	cfg.DatabaseURL = "postgres://localhost/todo"
	cfg.DeleteDelay = time.Second

	require.NoError(t, cfg.SaveTo(path))
	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", got.Store)
	assert.Equal(t, "postgres://localhost/todo", got.DatabaseURL)
	assert.Equal(t, time.Second, got.DeleteDelay)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IRONTODO_STORE", "redis")
	t.Setenv("IRONTODO_DELETE_DELAY", "750")
	t.Setenv("IRONTODO_LOG_CONSOLE", "true")

	cfg := DefaultConfig()
	assert.Equal(t, "redis", cfg.Store)
	assert.Equal(t, 750*time.Millisecond, cfg.DeleteDelay)
	assert.True(t, cfg.LogConsole)
	assert.Equal(t, "redis", cfg.StoreConfig().Backend)
}

func TestRemoteSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	cfg := DefaultConfig()
	cfg.ServerURL = "http://todo.example:8080"
	cfg.SetRemoteSession(model.Session{Username: "ragul", Token: "tok", ExpiresAt: expires})
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://todo.example:8080", loaded.ServerURL)
	sess := loaded.RemoteSession()
	assert.Equal(t, "ragul", sess.Username)
	assert.Equal(t, "tok", sess.Token)
	assert.True(t, expires.Equal(sess.ExpiresAt))

	loaded.SetRemoteSession(model.Session{})
	require.NoError(t, loaded.SaveTo(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "remote_token")
}
