package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yamasante/medtranslate-api/config"
	"github.com/yamasante/medtranslate-api/handlers"
	"github.com/yamasante/medtranslate-api/health"
	"github.com/yamasante/medtranslate-api/lexicon"
	"github.com/yamasante/medtranslate-api/logging"
	"github.com/yamasante/medtranslate-api/metrics"
	"github.com/yamasante/medtranslate-api/safety"
	"github.com/yamasante/medtranslate-api/scheduler"
	"github.com/yamasante/medtranslate-api/server"
	"github.com/yamasante/medtranslate-api/translator"
	"github.com/yamasante/medtranslate-api/validation"
)

func init() {
	// Read the env variables from the working directory
	err := godotenv.Load()
	if err != nil {
		// If failed, try loading from executable directory
		ex, err := os.Executable()
		if err != nil {
			slog.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		exPath := filepath.Dir(ex)

		err = os.Chdir(exPath)
		if err != nil {
			slog.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}

		// A missing .env is fine here: configuration falls back to the
		// process environment and built-in defaults
		_ = godotenv.Load()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	// Logging must come up before the server: the request middleware
	// writes through the shared logging service
	logging.InitLoggerWithRetention("logs", cfg.LogRetentionWeeks, cfg.MaxLogFileSize,
		logging.LevelFromString(cfg.LogLevel))

	// The lexicon starts from the built-in medication list; the
	// scheduler layers the configured file on top and keeps it fresh
	store := lexicon.NewWithDefaults()

	tr, err := translator.New(translator.Config{
		Backend:     cfg.Translator,
		BaseURL:     cfg.TranslatorURL,
		Model:       cfg.TranslatorModel,
		Credentials: cfg.GoogleCredentials,
		Timeout:     cfg.TranslatorTimeout,
	})
	if err != nil {
		logging.Error("Failed to create translation backend", "error", err, "backend", cfg.Translator)
		os.Exit(1)
	}
	if tr == nil {
		logging.Warn("No translation backend configured, running in verification-only mode")
	}

	checker := safety.NewChecker(store)
	validator := validation.NewValidator(cfg.MaxInputLength)
	healthChecker := health.NewHealthChecker(store, tr, cfg.LexiconPath != "")

	handler := handlers.NewTranslationHandler(store, checker, tr, validator, healthChecker,
		metrics.DefaultMonitor)

	sched := scheduler.NewScheduler(store, cfg.LexiconPath)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start lexicon scheduler", "error", err)
		os.Exit(1)
	}

	metrics.LexiconEntries.Set(float64(store.Len()))

	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		fmt.Printf("Starting server at %s:%s\n", cfg.Address, cfg.Port)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	// Create a context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}

	sched.Stop()
	logging.Close()
}
