package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field represents a key-value pair for structured logging
type Field = zap.Field

// F is a shorthand for creating a Field
func F(key string, value interface{}) Field {
	return zap.Any(key, value)
}

// ParseLevel converts a string to a level, defaulting to INFO
func ParseLevel(s string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config holds logger configuration
type Config struct {
	Level      zapcore.Level // Minimum log level
	FilePath   string        // Path to log file
	MaxSize    int64         // Max size in bytes before rotation (default: 10MB)
	MaxAge     int           // Max age in days (default: 7)
	MaxBackups int           // Max number of backup files (default: 5)
	Console    bool          // Enable console logging
}

// DefaultConfig returns default logger configuration
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	logPath := filepath.Join(home, ".irontodo", "logs", "irontodo.log")

	return Config{
		Level:      zapcore.InfoLevel,
		FilePath:   logPath,
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxAge:     7,
		MaxBackups: 5,
		Console:    false, // Disabled by default to not interfere with TUI
	}
}

// Logger is a zap logger bound to its log file
type Logger struct {
	*zap.Logger
	config Config
	file   *rotatingFile
}

var (
	mu           sync.Mutex
	globalLogger = &Logger{Logger: zap.NewNop()}
)

// Init replaces the global logger
func Init(config Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}

	mu.Lock()
	old := globalLogger
	globalLogger = l
	mu.Unlock()

	return old.Close()
}

// New creates a new logger instance writing to the configured file and/or stderr
func New(config Config) (*Logger, error) {
	l := &Logger{config: config}
	var sinks []zapcore.WriteSyncer

	if config.FilePath != "" {
		// Create log directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		if err := rotateIfNeeded(config); err != nil {
			return nil, fmt.Errorf("failed to rotate log: %w", err)
		}

		file, err := openRotatingFile(config)
		if err != nil {
			return nil, err
		}
		l.file = file
		sinks = append(sinks, file)
	}

	// Add console output if enabled
	if config.Console {
		sinks = append(sinks, zapcore.Lock(os.Stderr))
	}

	if len(sinks) == 0 {
		l.Logger = zap.NewNop()
		return l, nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.NewMultiWriteSyncer(sinks...),
		config.Level,
	)
	l.Logger = zap.New(core, zap.AddCaller())
	return l, nil
}

// rotateIfNeeded rotates the log file when it is too large or too old
func rotateIfNeeded(config Config) error {
	info, err := os.Stat(config.FilePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	tooBig := config.MaxSize > 0 && info.Size() >= config.MaxSize
	tooOld := config.MaxAge > 0 && time.Since(info.ModTime()) > time.Duration(config.MaxAge)*24*time.Hour
	if !tooBig && !tooOld {
		return nil
	}
	return rotate(config)
}

// rotate shifts backups up by one and moves the current log to .1
func rotate(config Config) error {
	if config.MaxBackups < 1 {
		return os.Remove(config.FilePath)
	}

	for i := config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", config.FilePath, i)
		newPath := fmt.Sprintf("%s.%d", config.FilePath, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	return os.Rename(config.FilePath, config.FilePath+".1")
}

// rotatingFile is the log file sink. It rotates once a write would take it past MaxSize.
type rotatingFile struct {
	mu     sync.Mutex
	config Config
	file   *os.File
	size   int64
}

func openRotatingFile(config Config) (*rotatingFile, error) {
	r := &rotatingFile{config: config}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	r.file = file
	r.size = info.Size()
	return nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.MaxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.config.MaxSize {
		_ = r.file.Close()
		// A failed rename keeps appending to the current file
		_ = rotate(r.config)
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Sync()
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

// Close flushes buffered entries and closes the log file
func (l *Logger) Close() error {
	if l == nil || l.Logger == nil {
		return nil
	}
	_ = l.Logger.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Global logger functions

// L returns the global zap logger
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return globalLogger.Logger
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// WithFields creates a logger with preset fields from the global logger
func WithFields(fields ...Field) *zap.Logger {
	return L().With(fields...)
}

// Close closes the global logger
func Close() error {
	mu.Lock()
	l := globalLogger
	globalLogger = &Logger{Logger: zap.NewNop()}
	mu.Unlock()
	return l.Close()
}
