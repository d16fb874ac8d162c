package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/lexicon"
	"github.com/yamasante/medtranslate-api/safety"
	"github.com/yamasante/medtranslate-api/translator"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

// TestDataFactory creates consistent test data across all tests
type TestDataFactory struct{}

func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// CreateLexicon creates a lexicon populated with the given names
func (f *TestDataFactory) CreateLexicon(names ...string) *lexicon.Lexicon {
	lex := lexicon.New()
	for _, name := range names {
		lex.Add(name)
	}
	lex.MarkLoaded()
	return lex
}

// CreateChecker creates a safety checker backed by a lexicon with the
// given medication names
func (f *TestDataFactory) CreateChecker(names ...string) (*safety.Checker, *lexicon.Lexicon) {
	lex := f.CreateLexicon(names...)
	return safety.NewChecker(lex), lex
}

// CreateTranslationRequest creates a valid French to Wolof request body
func (f *TestDataFactory) CreateTranslationRequest(text string) TranslationRequest {
	return TranslationRequest{
		Text:       text,
		SourceLang: safety.LangFrench,
		TargetLang: safety.LangWolof,
	}
}

// ============================================================================
// MOCK BUILDERS
// ============================================================================

// MockTranslatorBuilder provides fluent interface for building mock translators
type MockTranslatorBuilder struct {
	mock *MockTranslator
}

func NewMockTranslatorBuilder() *MockTranslatorBuilder {
	return &MockTranslatorBuilder{
		mock: &MockTranslator{
			name: "mock",
		},
	}
}

// WithOutput makes every call return the same translated text
func (b *MockTranslatorBuilder) WithOutput(text string) *MockTranslatorBuilder {
	b.mock.translateFn = func(req translator.Request) string {
		return text
	}
	return b
}

// WithEcho makes every call return its input unchanged
func (b *MockTranslatorBuilder) WithEcho() *MockTranslatorBuilder {
	b.mock.translateFn = func(req translator.Request) string {
		return req.Text
	}
	return b
}

// WithTransform makes every call run the input through fn
func (b *MockTranslatorBuilder) WithTransform(fn func(string) string) *MockTranslatorBuilder {
	b.mock.translateFn = func(req translator.Request) string {
		return fn(req.Text)
	}
	return b
}

func (b *MockTranslatorBuilder) WithError(err error) *MockTranslatorBuilder {
	b.mock.translateErr = err
	return b
}

func (b *MockTranslatorBuilder) Build() *MockTranslator {
	return b.mock
}

// MockValidatorBuilder provides fluent interface for building mock validators
type MockValidatorBuilder struct {
	mock *MockValidator
}

func NewMockValidatorBuilder() *MockValidatorBuilder {
	return &MockValidatorBuilder{
		mock: &MockValidator{},
	}
}

func (b *MockValidatorBuilder) WithTextError(err error) *MockValidatorBuilder {
	b.mock.textError = err
	return b
}

func (b *MockValidatorBuilder) WithNameError(err error) *MockValidatorBuilder {
	b.mock.nameError = err
	return b
}

func (b *MockValidatorBuilder) Build() *MockValidator {
	return b.mock
}

// MockHealthCheckerBuilder provides fluent interface for building mock health checkers
type MockHealthCheckerBuilder struct {
	mock *MockHealthChecker
}

func NewMockHealthCheckerBuilder() *MockHealthCheckerBuilder {
	return &MockHealthCheckerBuilder{
		mock: &MockHealthChecker{
			status:     "healthy",
			details:    map[string]any{"lexicon_entries": 10},
			httpStatus: http.StatusOK,
			nextReload: time.Date(2026, 1, 2, 6, 0, 0, 0, time.UTC),
		},
	}
}

func (b *MockHealthCheckerBuilder) WithStatus(status string, httpStatus int) *MockHealthCheckerBuilder {
	b.mock.status = status
	b.mock.httpStatus = httpStatus
	return b
}

func (b *MockHealthCheckerBuilder) WithDetails(details map[string]any) *MockHealthCheckerBuilder {
	b.mock.details = details
	return b
}

func (b *MockHealthCheckerBuilder) Build() *MockHealthChecker {
	return b.mock
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string, urlParams map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// ExecuteJSONRequest executes an HTTP handler with a JSON body. A string
// payload is sent verbatim so malformed bodies can be tested.
func (h *HTTPTestHelper) ExecuteJSONRequest(handler http.HandlerFunc, method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if raw, ok := payload.(string); ok {
		body.WriteString(raw)
	} else if err := json.NewEncoder(&body).Encode(payload); err != nil {
		h.t.Fatalf("Failed to encode request payload: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d (body: %s)", expectedStatus, resp.Code, resp.Body.String())
	}

	bodyStr := resp.Body.String()
	if bodyStr == "" {
		h.t.Error("Response body should not be empty")
	}

	err := json.Unmarshal([]byte(bodyStr), target)
	if err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) {
	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	var errorResp map[string]any
	err := json.Unmarshal(resp.Body.Bytes(), &errorResp)
	if err != nil {
		h.t.Errorf("Error response should be valid JSON, got error: %v", err)
	}

	// Check that it has error fields
	if _, ok := errorResp["message"]; !ok {
		h.t.Error("Error response should have message field")
	}
	if _, ok := errorResp["code"]; !ok {
		h.t.Error("Error response should have code field")
	}
}

// AssertTranslationError asserts the structured rejection shape of the
// translation endpoint and returns the decoded body
func (h *HTTPTestHelper) AssertTranslationError(resp *httptest.ResponseRecorder, expectedStatus int, expectedCode string) ErrorResponse {
	var errorResp ErrorResponse
	h.AssertJSONResponse(resp, expectedStatus, &errorResp)

	if errorResp.ErrorCode != expectedCode {
		h.t.Errorf("Expected error code %s, got %s", expectedCode, errorResp.ErrorCode)
	}
	if errorResp.RequestID == "" {
		h.t.Error("Error response should carry a request_id")
	}
	if errorResp.ErrorMessage == "" {
		h.t.Error("Error response should carry an error_message")
	}
	return errorResp
}

// ============================================================================
// MOCK IMPLEMENTATIONS
// ============================================================================

// MockTranslator implements translator.Translator for testing
type MockTranslator struct {
	name         string
	translateFn  func(req translator.Request) string
	translateErr error
	healthyErr   error

	// Method call tracking
	translateCalled bool
	callCount       int
	lastRequest     translator.Request
}

func (m *MockTranslator) Name() string {
	return m.name
}

func (m *MockTranslator) Translate(ctx context.Context, req translator.Request) (*translator.Result, error) {
	m.translateCalled = true
	m.callCount++
	m.lastRequest = req

	if m.translateErr != nil {
		return nil, m.translateErr
	}

	translated := req.Text
	if m.translateFn != nil {
		translated = m.translateFn(req)
	}
	return &translator.Result{
		TranslatedText: translated,
		Model:          "mock-model",
		Latency:        time.Millisecond,
	}, nil
}

func (m *MockTranslator) Healthy(ctx context.Context) error {
	return m.healthyErr
}

// MockValidator implements interfaces.InputValidator for testing.
// Language tags are checked against the real supported set so request
// validation behaves like production.
type MockValidator struct {
	textError error
	nameError error

	validateTextCalled bool
	lastValidatedText  string
	lastValidatedTag   string
	lastValidatedName  string
}

func (m *MockValidator) ValidateText(text string) error {
	m.validateTextCalled = true
	m.lastValidatedText = text
	if m.textError != nil {
		return m.textError
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("le texte ne peut pas être vide")
	}
	return nil
}

func (m *MockValidator) ValidateLanguageTag(tag string) error {
	m.lastValidatedTag = tag
	if tag != safety.LangFrench && tag != safety.LangWolof {
		return fmt.Errorf("langue non supportée: %s", tag)
	}
	return nil
}

func (m *MockValidator) ValidateMedicationName(name string) error {
	m.lastValidatedName = name
	if m.nameError != nil {
		return m.nameError
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("le nom ne peut pas être vide")
	}
	return nil
}

// MockHealthChecker implements interfaces.HealthChecker for testing
type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
	nextReload time.Time

	healthCheckCalled bool
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	m.healthCheckCalled = true
	return m.status, m.details, m.httpStatus
}

func (m *MockHealthChecker) CalculateNextReload() time.Time {
	return m.nextReload
}

// MockMonitor implements interfaces.TranslationMonitor for testing
type MockMonitor struct {
	requests   int
	successes  int
	failures   int
	violations []string
	stats      map[string]any
}

func (m *MockMonitor) RecordRequest() {
	m.requests++
}

func (m *MockMonitor) RecordSuccess(durationMs float64) {
	m.successes++
}

func (m *MockMonitor) RecordFailure(durationMs float64) {
	m.failures++
}

func (m *MockMonitor) RecordViolation(code string) {
	m.violations = append(m.violations, code)
}

func (m *MockMonitor) Statistics() map[string]any {
	if m.stats != nil {
		return m.stats
	}
	return map[string]any{
		"total_requests":  m.requests,
		"total_successes": m.successes,
		"total_failures":  m.failures,
	}
}

// newTestHandler wires a full handler around the given translator with
// sensible defaults for everything else
func newTestHandler(tr translator.Translator, names ...string) (interfaces.HTTPHandler, *MockMonitor) {
	factory := NewTestDataFactory()
	checker, lex := factory.CreateChecker(names...)
	monitor := &MockMonitor{}

	handler := NewTranslationHandler(
		lex,
		checker,
		tr,
		NewMockValidatorBuilder().Build(),
		NewMockHealthCheckerBuilder().Build(),
		monitor,
	)
	return handler, monitor
}
