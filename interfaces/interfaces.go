// Package interfaces defines core abstractions for the medical translation API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/yamasante/medtranslate-api/safety"
)

// LexiconStore defines the contract for the medication lexicon.
// It provides thread-safe lookup and whole-word matching with atomic
// snapshot publication so readers never block during reloads.
type LexiconStore interface {
	// Lookup methods
	IsKnown(word string) bool
	FindAll(text string) []string
	Len() int
	Names() []string
	LastLoaded() time.Time
	IsReloading() bool

	// Mutation methods
	Add(name string)
	MarkLoaded()
	BeginReload() bool
	EndReload()
}

// SafetyVerifier defines the contract for the translation safety engine.
// It covers the whole pipeline around an external translator call:
// extraction of critical elements, protection of those elements across
// the call, and the final accept-or-reject verdict.
type SafetyVerifier interface {
	// Extract collects medications, dosages, medical values and numbers
	// from clinical text.
	Extract(text string) safety.ExtractedElements

	// Restore repairs dosage and number tokens the translator corrupted,
	// by ordinal position against the source text.
	Restore(source, translated string) string

	// Mask replaces critical elements with opaque placeholders before
	// translation; Unmask reverses the substitution afterwards.
	Mask(text string) (string, safety.PlaceholderMapping)
	Unmask(text string, mapping safety.PlaceholderMapping) string

	// Verify runs the ordered safety checks and returns the verdict.
	// A nil mapping skips the placeholder residue check.
	Verify(source, translated, sourceLang string, mapping safety.PlaceholderMapping) safety.SafetyCheckResult
}

// Compile-time check that the canonical checker satisfies the contract.
var _ SafetyVerifier = (*safety.Checker)(nil)

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated lexicon reloads and staleness watching.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// Translation endpoint
	Translate(w http.ResponseWriter, r *http.Request)

	// Lexicon endpoints
	LexiconInfo(w http.ResponseWriter, r *http.Request)
	LexiconCheck(w http.ResponseWriter, r *http.Request)
	LexiconAdd(w http.ResponseWriter, r *http.Request)
	LexiconExport(w http.ResponseWriter, r *http.Request)

	// Operational endpoints
	HealthCheck(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
	ServiceInfo(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status and the HTTP
	// status code the /health endpoint should answer with.
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextReload returns the next scheduled lexicon reload time
	CalculateNextReload() time.Time
}

// InputValidator defines the contract for request input validation.
// It guards the API surface against malformed and hostile input.
type InputValidator interface {
	// ValidateText checks free clinical text before translation
	ValidateText(text string) error

	// ValidateLanguageTag checks a language tag against the supported set
	ValidateLanguageTag(tag string) error

	// ValidateMedicationName checks a single medication name
	ValidateMedicationName(name string) error
}

// TranslationMonitor defines the contract for request accounting
// behind the /statistics endpoint.
type TranslationMonitor interface {
	RecordRequest()
	RecordSuccess(durationMs float64)
	RecordFailure(durationMs float64)
	RecordViolation(code string)
	Statistics() map[string]any
}
