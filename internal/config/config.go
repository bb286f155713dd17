package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/existflow/irontodo/internal/model"
	"github.com/existflow/irontodo/internal/store"
	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	ConfirmDelete bool          `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete
	DeleteDelay   time.Duration `yaml:"delete_delay" json:"delete_delay"`     // Pause before a confirmed delete is applied

	// Storage
	Store                string `yaml:"store" json:"store"` // memory, sqlite, postgres, redis
	DBPath               string `yaml:"db_path" json:"db_path"`
	DatabaseURL          string `yaml:"database_url" json:"database_url"`
	RedisAddr            string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword        string `yaml:"redis_password" json:"redis_password"`
	RedisDB              int    `yaml:"redis_db" json:"redis_db"`
	EncryptionPassphrase string `yaml:"encryption_passphrase" json:"encryption_passphrase"`

	// Auth
	TokenSecret string            `yaml:"token_secret" json:"token_secret"` // Empty: generated and kept in the store
	TokenTTL    time.Duration     `yaml:"token_ttl" json:"token_ttl"`
	SeedUsers   map[string]string `yaml:"seed_users" json:"seed_users"`

	// Server
	ServerAddr string `yaml:"server_addr" json:"server_addr"`

	// Remote list. With a server URL the list commands go through its HTTP API.
	ServerURL       string    `yaml:"server_url" json:"server_url"`
	RemoteUser      string    `yaml:"remote_user,omitempty" json:"remote_user,omitempty"`
	RemoteToken     string    `yaml:"remote_token,omitempty" json:"remote_token,omitempty"`
	RemoteExpiresAt time.Time `yaml:"remote_expires_at,omitempty" json:"remote_expires_at,omitempty"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns the application directory (~/.irontodo)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".irontodo"), nil
}

// DefaultPath returns the config file path (~/.irontodo/config.yaml)
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath, dbPath := "", ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "irontodo.log")
		dbPath = filepath.Join(dir, "todo.db")
	}

	return &Config{
		ConfirmDelete: true,
		DeleteDelay:   getEnvDuration("IRONTODO_DELETE_DELAY", 500*time.Millisecond),
		Store:         getEnv("IRONTODO_STORE", store.BackendSQLite),
		DBPath:        getEnv("IRONTODO_DB_PATH", dbPath),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("IRONTODO_REDIS_ADDR", "localhost:6379"),
		TokenSecret:   getEnv("IRONTODO_TOKEN_SECRET", ""),
		TokenTTL:      30 * 24 * time.Hour,
		SeedUsers:     map[string]string{"ragul": "123456"},
		ServerAddr:    getEnv("IRONTODO_ADDR", ":8080"),
		ServerURL:     getEnv("IRONTODO_SERVER_URL", ""),
		LogLevel:      getEnv("IRONTODO_LOG_LEVEL", "INFO"),
		LogFile:       getEnv("IRONTODO_LOG_FILE", logPath),
		LogConsole:    getEnv("IRONTODO_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// StoreConfig returns the storage settings
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Backend:       c.Store,
		DBPath:        c.DBPath,
		DatabaseURL:   c.DatabaseURL,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		Passphrase:    c.EncryptionPassphrase,
	}
}

// RemoteSession returns the saved login for ServerURL
func (c *Config) RemoteSession() model.Session {
	return model.Session{Username: c.RemoteUser, Token: c.RemoteToken, ExpiresAt: c.RemoteExpiresAt}
}

// SetRemoteSession records sess as the login for ServerURL. A zero session logs out.
func (c *Config) SetRemoteSession(sess model.Session) {
	c.RemoteUser = sess.Username
	c.RemoteToken = sess.Token
	c.RemoteExpiresAt = sess.ExpiresAt
}

// Load loads config from ~/.irontodo/config.yaml
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads config from path, returning defaults if the file does not exist
func LoadFrom(path string) (*Config, error) {
	// Check if exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.irontodo/config.yaml
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
