package logging

import (
	"log/slog"
	"os"
	"strings"
)

// LoggingService owns the configured logger and its rotating file sink.
type LoggingService struct {
	Logger  *slog.Logger
	rotator *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger with default retention
func InitLogger(logDir string) {
	InitLoggerWithRetention(logDir, 4, 100*1024*1024, slog.LevelInfo)
}

// InitLoggerWithRetention initializes the global logger with explicit
// retention, size limit and level
func InitLoggerWithRetention(logDir string, retentionWeeks int, maxFileSize int64, level slog.Level) {
	logger, rotator := SetupLoggerWithRetention(logDir, retentionWeeks, maxFileSize, level)
	DefaultLoggingService = &LoggingService{Logger: logger, rotator: rotator}
	slog.SetDefault(logger)
}

// Close flushes and closes the rotating log file and stops the cleanup
// goroutine. Safe to call when the logger was never initialized.
func Close() {
	if DefaultLoggingService == nil || DefaultLoggingService.rotator == nil {
		return
	}
	if err := DefaultLoggingService.rotator.Close(); err != nil {
		slog.Warn("Failed to close rotating logger", "error", err)
	}
}

// LevelFromString maps a configuration string to a slog level,
// defaulting to info
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logger returns the initialized logger, or a stderr fallback so that
// messages from early startup are never lost
func logger() *slog.Logger {
	if DefaultLoggingService != nil && DefaultLoggingService.Logger != nil {
		return DefaultLoggingService.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
