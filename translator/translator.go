// Package translator provides the client contract to the external
// machine translation backend and its implementations. The backend is
// treated as untrusted: whatever it returns goes through the safety
// checks before reaching anyone.
package translator

import (
	"context"
	"fmt"
	"time"
)

// Request is one translation to perform. Languages are NLLB-200 tags.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Result is a completed translation.
type Result struct {
	TranslatedText string
	Model          string
	Latency        time.Duration
}

// Translator is implemented by every translation backend.
type Translator interface {
	// Name identifies the backend in logs and health reports
	Name() string

	// Translate performs one translation, honoring ctx cancellation
	Translate(ctx context.Context, req Request) (*Result, error)

	// Healthy reports whether the backend is reachable
	Healthy(ctx context.Context) error
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend     string // nllb, google or none
	BaseURL     string
	Model       string
	Credentials string
	Timeout     time.Duration
}

// New builds the translator selected by cfg.Backend. The "none" backend
// returns a nil Translator, which leaves the API in verification-only
// mode: /translate answers 503 while every other endpoint keeps working.
func New(cfg Config) (Translator, error) {
	switch cfg.Backend {
	case "", "nllb":
		return NewNLLBClient(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "google":
		return NewGoogleClient(cfg.Credentials), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown translator backend: %s", cfg.Backend)
	}
}
