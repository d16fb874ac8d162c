// Package health provides health checking functionality for the
// medical translation API.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/translator"
)

// translatorProbeTimeout bounds the backend reachability probe so the
// /health endpoint stays fast even when the backend hangs.
const translatorProbeTimeout = 2 * time.Second

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	lexicon          interfaces.LexiconStore
	translator       translator.Translator // nil in verification-only mode
	reloadConfigured bool
}

// NewHealthChecker creates a new health checker with injected
// dependencies. reloadConfigured tells the checker whether lexicon
// staleness is meaningful: without a configured lexicon file the
// built-in list never ages.
func NewHealthChecker(lexicon interfaces.LexiconStore, tr translator.Translator, reloadConfigured bool) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		lexicon:          lexicon,
		translator:       tr,
		reloadConfigured: reloadConfigured,
	}
}

// HealthCheck returns the health verdict for the /health endpoint. An
// empty lexicon is unhealthy: without medication names the safety
// engine is blind. An unreachable translator or a stale lexicon
// degrades the service.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	entries := h.lexicon.Len()
	lastLoaded := h.lexicon.LastLoaded()
	lexiconAge := time.Since(lastLoaded)

	translatorStatus := "disabled"
	var translatorName string
	var translatorErr error
	if h.translator != nil {
		translatorName = h.translator.Name()
		ctx, cancel := context.WithTimeout(context.Background(), translatorProbeTimeout)
		translatorErr = h.translator.Healthy(ctx)
		cancel()
		if translatorErr != nil {
			translatorStatus = "unreachable"
		} else {
			translatorStatus = "ok"
		}
	}

	switch {
	case entries == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case translatorErr != nil:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case h.reloadConfigured && lexiconAge > 48*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"lexicon_entries":   entries,
		"lexicon_loaded_at": lastLoaded.Format(time.RFC3339),
		"lexicon_age_hours": math.Round(lexiconAge.Hours()*10) / 10,
		"is_reloading":      h.lexicon.IsReloading(),
		"translator":        translatorStatus,
		"next_reload":       h.CalculateNextReload().Format(time.RFC3339),
	}
	if translatorName != "" {
		data["translator_backend"] = translatorName
	}

	return status, data, httpStatus
}

// CalculateNextReload returns the next scheduled lexicon reload time
func (h *HealthCheckerImpl) CalculateNextReload() time.Time {
	now := time.Now()

	// Reloads run at 06:00 and 18:00 local time
	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	if now.Before(sixAM) {
		return sixAM
	}
	if now.Before(sixPM) {
		return sixPM
	}
	return sixAM.AddDate(0, 0, 1)
}
