// Package handlers provides HTTP request handlers for the translation API endpoints.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/logging"
	"github.com/yamasante/medtranslate-api/metrics"
	"github.com/yamasante/medtranslate-api/safety"
	"github.com/yamasante/medtranslate-api/translator"
)

// API identity served by the root endpoint.
const (
	APIName    = "YAMA Medical Translation API"
	APIVersion = "1.0.0"
)

// Error codes for failures outside the safety checks. Violation codes
// come from the safety package.
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeTranslatorUnavailable = "TRANSLATOR_UNAVAILABLE"
	CodeTranslationFailed     = "TRANSLATION_FAILED"
)

// rejectionDetails is the fixed explanation attached to every 422.
const rejectionDetails = "La traduction a été rejetée car elle viole les règles de sécurité médicale. " +
	"Cela peut indiquer une perte d'information critique (posologie, négation, etc.)."

// TranslationRequest is the body of POST /translate. Mask selects the
// placeholder protection strategy instead of post-hoc restoration.
type TranslationRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Mask       bool   `json:"mask,omitempty"`
}

// TranslationResponse is returned for an accepted translation.
type TranslationResponse struct {
	RequestID         string   `json:"request_id"`
	SourceText        string   `json:"source_text"`
	TranslatedText    string   `json:"translated_text"`
	SourceLang        string   `json:"source_lang"`
	TargetLang        string   `json:"target_lang"`
	TranslationTimeMs float64  `json:"translation_time_ms"`
	SafetyWarnings    []string `json:"safety_warnings"`
}

// ErrorResponse is returned when a translation request fails, including
// safety rejections. The 422 body carries the violation code so callers
// can distinguish a numeric loss from a lost negation.
type ErrorResponse struct {
	RequestID    string `json:"request_id"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Details      string `json:"details,omitempty"`
}

// MedicationRequest is the body of POST /lexicon/medications.
type MedicationRequest struct {
	Name string `json:"name"`
	DCI  string `json:"dci,omitempty"`
}

// TranslationHandlerImpl implements the interfaces.HTTPHandler interface
type TranslationHandlerImpl struct {
	lexicon    interfaces.LexiconStore
	checker    interfaces.SafetyVerifier
	translator translator.Translator
	validator  interfaces.InputValidator
	health     interfaces.HealthChecker
	monitor    interfaces.TranslationMonitor
}

// NewTranslationHandler creates a new HTTP handler with injected
// dependencies. A nil translator puts the service in verification-only
// mode: /translate answers 503 while the lexicon and operational
// endpoints keep working.
func NewTranslationHandler(
	lexicon interfaces.LexiconStore,
	checker interfaces.SafetyVerifier,
	tr translator.Translator,
	validator interfaces.InputValidator,
	health interfaces.HealthChecker,
	monitor interfaces.TranslationMonitor,
) interfaces.HTTPHandler {
	return &TranslationHandlerImpl{
		lexicon:    lexicon,
		checker:    checker,
		translator: tr,
		validator:  validator,
		health:     health,
		monitor:    monitor,
	}
}

// RespondWithJSON writes a JSON response with proper headers
func (h *TranslationHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *TranslationHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// Translate runs the safety pipeline around one translator call: validate,
// translate with the selected protection strategy, verify, accept or
// withhold. Whatever the backend returns never reaches the caller before
// the Verify verdict.
func (h *TranslationHandlerImpl) Translate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	var req TranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			RequestID:    requestID,
			ErrorCode:    CodeInvalidRequest,
			ErrorMessage: "Corps de requête JSON invalide",
		})
		return
	}

	if err := h.validateTranslationRequest(&req); err != nil {
		logging.Warn("Rejected translation request", "request_id", requestID, "error", err)
		h.RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{
			RequestID:    requestID,
			ErrorCode:    CodeInvalidRequest,
			ErrorMessage: err.Error(),
		})
		return
	}

	h.monitor.RecordRequest()
	logging.Info("Translation request received",
		"request_id", requestID,
		"source_lang", req.SourceLang,
		"target_lang", req.TargetLang,
		"text_length", len(req.Text),
		"text_preview", preview(req.Text, 100),
	)

	if h.translator == nil {
		h.RespondWithJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			RequestID:    requestID,
			ErrorCode:    CodeTranslatorUnavailable,
			ErrorMessage: "Service de traduction non initialisé",
		})
		return
	}

	start := time.Now()
	translated, mapping, err := h.runTranslation(r.Context(), &req)
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		h.monitor.RecordFailure(elapsedMs)
		metrics.TranslationRequestsTotal.WithLabelValues(req.SourceLang, req.TargetLang, "error").Inc()
		logging.Error("Translation backend call failed",
			"request_id", requestID,
			"backend", h.translator.Name(),
			"error", err,
		)
		h.RespondWithJSON(w, http.StatusBadGateway, ErrorResponse{
			RequestID:    requestID,
			ErrorCode:    CodeTranslationFailed,
			ErrorMessage: "La traduction a échoué",
			Details:      err.Error(),
		})
		return
	}

	result := h.checker.Verify(req.Text, translated, req.SourceLang, mapping)
	metrics.TranslationDuration.Observe(time.Since(start).Seconds())

	if !result.IsSafe {
		h.monitor.RecordViolation(result.ErrorCode)
		h.monitor.RecordFailure(elapsedMs)
		metrics.TranslationRequestsTotal.WithLabelValues(req.SourceLang, req.TargetLang, "rejected").Inc()
		metrics.SafetyViolationsTotal.WithLabelValues(result.ErrorCode).Inc()
		logging.Error("SAFETY VIOLATION",
			"request_id", requestID,
			"violation_type", result.ErrorCode,
			"source_text", preview(req.Text, 200),
			"translated_text", preview(translated, 200),
			"details", result.ErrorMessage,
			"similarity", fmt.Sprintf("%.3f", safety.TextSimilarity(req.Text, translated)),
			"severity", "CRITICAL",
		)
		h.RespondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			RequestID:    requestID,
			ErrorCode:    result.ErrorCode,
			ErrorMessage: result.ErrorMessage,
			Details:      rejectionDetails,
		})
		return
	}

	h.monitor.RecordSuccess(elapsedMs)
	metrics.TranslationRequestsTotal.WithLabelValues(req.SourceLang, req.TargetLang, "success").Inc()
	logging.Info("Translation completed",
		"request_id", requestID,
		"translation_time_ms", elapsedMs,
		"warnings", len(result.Warnings),
	)

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	h.RespondWithJSON(w, http.StatusOK, TranslationResponse{
		RequestID:         requestID,
		SourceText:        req.Text,
		TranslatedText:    translated,
		SourceLang:        req.SourceLang,
		TargetLang:        req.TargetLang,
		TranslationTimeMs: elapsedMs,
		SafetyWarnings:    warnings,
	})
}

// validateTranslationRequest checks languages and text before any work
// is done. The language pair must come from the supported set and differ.
func (h *TranslationHandlerImpl) validateTranslationRequest(req *TranslationRequest) error {
	if err := h.validator.ValidateLanguageTag(req.SourceLang); err != nil {
		return fmt.Errorf("source_lang: %w", err)
	}
	if err := h.validator.ValidateLanguageTag(req.TargetLang); err != nil {
		return fmt.Errorf("target_lang: %w", err)
	}
	if req.SourceLang == req.TargetLang {
		return errors.New("les langues source et cible doivent être différentes")
	}
	return h.validator.ValidateText(req.Text)
}

// runTranslation performs one backend call with the selected protection
// strategy. Masking hides critical elements behind placeholders around
// the call; the default strategy translates the raw text and repairs
// corrupted dosage and number tokens afterwards. The returned mapping is
// non-nil exactly when masking ran, even with nothing to mask, so Verify
// screens every masked translation for placeholder residue.
func (h *TranslationHandlerImpl) runTranslation(ctx context.Context, req *TranslationRequest) (string, safety.PlaceholderMapping, error) {
	if req.Mask {
		masked, mapping := h.checker.Mask(req.Text)
		result, err := h.translator.Translate(ctx, translator.Request{
			Text:       masked,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
		})
		if err != nil {
			return "", nil, err
		}
		return h.checker.Unmask(result.TranslatedText, mapping), mapping, nil
	}

	result, err := h.translator.Translate(ctx, translator.Request{
		Text:       req.Text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		return "", nil, err
	}
	return h.checker.Restore(req.Text, result.TranslatedText), nil, nil
}

// LexiconInfo reports the size and reload state of the medication lexicon
func (h *TranslationHandlerImpl) LexiconInfo(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"entries":      h.lexicon.Len(),
		"last_loaded":  h.lexicon.LastLoaded().Format(time.RFC3339),
		"is_reloading": h.lexicon.IsReloading(),
		"next_reload":  h.health.CalculateNextReload().Format(time.RFC3339),
	}
	h.RespondWithJSON(w, http.StatusOK, response)
}

// LexiconCheck reports whether a single word is a known medication name
func (h *TranslationHandlerImpl) LexiconCheck(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	if word == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing word")
		return
	}

	if err := h.validator.ValidateMedicationName(word); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"word":  word,
		"known": h.lexicon.IsKnown(word),
	})
}

// LexiconAdd registers a new medication name, and optionally its DCI, in
// the runtime lexicon. The whole-word matcher picks the names up on the
// next extraction.
func (h *TranslationHandlerImpl) LexiconAdd(w http.ResponseWriter, r *http.Request) {
	var req MedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.validator.ValidateMedicationName(req.Name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DCI != "" {
		if err := h.validator.ValidateMedicationName(req.DCI); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	added := []string{req.Name}
	h.lexicon.Add(req.Name)
	if req.DCI != "" {
		h.lexicon.Add(req.DCI)
		added = append(added, req.DCI)
	}

	metrics.LexiconEntries.Set(float64(h.lexicon.Len()))
	logging.Info("Lexicon entry added", "name", req.Name, "dci", req.DCI, "entries", h.lexicon.Len())

	h.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"added":   added,
		"entries": h.lexicon.Len(),
	})
}

// LexiconExport returns the full lexicon as a document that LoadFile
// accepts, so an export can seed another instance.
func (h *TranslationHandlerImpl) LexiconExport(w http.ResponseWriter, r *http.Request) {
	names := h.lexicon.Names()
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"exported_at": time.Now().UTC().Format(time.RFC3339),
		"count":       len(names),
		"medications": names,
	})
}

// HealthCheck returns service health information
func (h *TranslationHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.health.HealthCheck()

	response := make(map[string]interface{}, len(details)+1)
	response["status"] = status
	for k, v := range details {
		response[k] = v
	}

	h.RespondWithJSON(w, httpStatus, response)
}

// Statistics returns aggregate request counters and latency figures
func (h *TranslationHandlerImpl) Statistics(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.monitor.Statistics())
}

// ServiceInfo describes the API surface at the root path
func (h *TranslationHandlerImpl) ServiceInfo(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"service": APIName,
		"version": APIVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"translate":      "POST /translate",
			"health":         "GET /health",
			"statistics":     "GET /statistics",
			"metrics":        "GET /metrics",
			"lexicon":        "GET /lexicon",
			"lexicon_check":  "GET /lexicon/check/{word}",
			"lexicon_add":    "POST /lexicon/medications",
			"lexicon_export": "GET /lexicon/export",
		},
	})
}

// preview truncates text for log output without splitting multi-byte
// runes. Violation logs keep only a bounded excerpt of clinical text.
func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
