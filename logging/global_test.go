package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"Error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := LevelFromString(tt.input)
			if got != tt.expected {
				t.Errorf("LevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInitLogger(t *testing.T) {
	tempDir := t.TempDir()
	t.Cleanup(func() {
		Close()
		DefaultLoggingService = nil
	})

	InitLogger(tempDir)

	if DefaultLoggingService == nil {
		t.Fatal("InitLogger did not initialize DefaultLoggingService")
	}
	if DefaultLoggingService.Logger == nil {
		t.Fatal("InitLogger did not set a logger")
	}

	// Test that logger works
	Info("Test message from global logger")

	// Check that log file was created
	currentWeek := getWeekKey(time.Now())
	expectedFileName := filepath.Join(tempDir, logFilePrefix+"-"+currentWeek+".log")
	if _, err := os.Stat(expectedFileName); os.IsNotExist(err) {
		t.Errorf("Expected log file %s was not created", expectedFileName)
	}
}

func TestInitLoggerWithRetention(t *testing.T) {
	tempDir := t.TempDir()
	t.Cleanup(func() {
		Close()
		DefaultLoggingService = nil
	})

	InitLoggerWithRetention(tempDir, 2, 1024*1024, slog.LevelDebug)

	if DefaultLoggingService == nil {
		t.Fatal("InitLoggerWithRetention did not initialize DefaultLoggingService")
	}

	Debug("Debug message should be written at debug level")

	currentWeek := getWeekKey(time.Now())
	content, err := os.ReadFile(filepath.Join(tempDir, logFilePrefix+"-"+currentWeek+".log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "Debug message") {
		t.Errorf("Log file does not contain debug message: %s", string(content))
	}
}

func TestPackageLevelFunctionsWithoutInit(t *testing.T) {
	// Package-level functions must fall back to stderr instead of
	// panicking when the logger was never initialized
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	t.Cleanup(func() { DefaultLoggingService = saved })

	Info("info without init")
	Error("error without init")
	Warn("warn without init")
	Debug("debug without init")
}

func TestCloseWithoutInit(t *testing.T) {
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	t.Cleanup(func() { DefaultLoggingService = saved })

	// Must not panic
	Close()
}

func TestCloseWithConsoleOnlyLogger(t *testing.T) {
	saved := DefaultLoggingService
	t.Cleanup(func() { DefaultLoggingService = saved })

	// A console-only fallback has no rotator; Close must handle that
	DefaultLoggingService = &LoggingService{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
	Close()
}
