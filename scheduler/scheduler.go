// Package scheduler provides automated lexicon reloads and staleness
// monitoring for the medical translation API. Reloads run on a cron
// schedule and coordinate with the lexicon store so concurrent reloads
// never overlap.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/lexicon"
	"github.com/yamasante/medtranslate-api/logging"
	"github.com/yamasante/medtranslate-api/metrics"
)

// Compile-time check to ensure Scheduler implements the Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler reloads the lexicon file on a fixed schedule
type Scheduler struct {
	lexicon   interfaces.LexiconStore
	path      string
	scheduler *gocron.Scheduler
}

// NewScheduler creates a scheduler that reloads lexiconPath into the
// given store. An empty path disables scheduled reloads.
func NewScheduler(store interfaces.LexiconStore, lexiconPath string) *Scheduler {
	return &Scheduler{
		lexicon:   store,
		path:      lexiconPath,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial load and schedules reloads at 06:00 and
// 18:00 daily. A failing load is not fatal: the store keeps serving
// whatever entries it already holds.
func (s *Scheduler) Start() error {
	if s.path == "" {
		logging.Info("No lexicon file configured, scheduled reloads disabled")
		return nil
	}

	if err := s.reload(); err != nil {
		logging.Error("Failed to perform initial lexicon load", "error", err, "path", s.path)
	}

	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.reload(); err != nil {
			logging.Error("Failed to reload lexicon", "error", err, "path", s.path)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule lexicon reloads", "error", err)
		return fmt.Errorf("failed to schedule lexicon reloads: %w", err)
	}

	s.scheduler.StartAsync()

	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reload loads the lexicon file into the store, skipping if another
// reload is already running
func (s *Scheduler) reload() error {
	if !s.lexicon.BeginReload() {
		logging.Info("Lexicon reload already in progress, skipping...")
		return nil
	}
	defer s.lexicon.EndReload()

	start := time.Now()

	report, err := lexicon.LoadFile(s.lexicon, s.path)
	if err != nil {
		return err
	}

	metrics.LexiconEntries.Set(float64(s.lexicon.Len()))

	logging.Info("Lexicon reload completed",
		"duration", time.Since(start).String(),
		"added", report.Added,
		"skipped", report.Skipped,
		"entries", s.lexicon.Len())

	return nil
}

// startStalenessMonitoring warns when reloads have silently stopped
// happening
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastLoaded := s.lexicon.LastLoaded()
			if time.Since(lastLoaded) > 25*time.Hour {
				logging.Warn("Lexicon hasn't been reloaded in over 25 hours")
			}
		}
	}()
}
