package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yamasante/medtranslate-api/handlers"
	"github.com/yamasante/medtranslate-api/health"
	"github.com/yamasante/medtranslate-api/interfaces"
	"github.com/yamasante/medtranslate-api/lexicon"
	"github.com/yamasante/medtranslate-api/metrics"
	"github.com/yamasante/medtranslate-api/safety"
	"github.com/yamasante/medtranslate-api/translator"
	"github.com/yamasante/medtranslate-api/validation"
)

// Representative prescription and its faithful translation, used by
// every benchmark so results stay comparable
const (
	benchSourceText  = "Prendre 2 comprimés de Doliprane 500 mg. Ne pas dépasser 6 comprimés par jour."
	benchTranslation = "Jëlal 2 comprimés Doliprane 500 mg. Bul weesu 6 comprimés ci bés."
)

var (
	benchStore   *lexicon.Lexicon
	benchChecker *safety.Checker
	benchHandler interfaces.HTTPHandler
	benchRouter  chi.Router
	benchOnce    sync.Once
)

// cannedTranslator answers instantly with a fixed translation, so the
// benchmarks measure the pipeline rather than a network round trip
type cannedTranslator struct {
	text string
}

func (c *cannedTranslator) Name() string { return "canned" }

func (c *cannedTranslator) Translate(ctx context.Context, req translator.Request) (*translator.Result, error) {
	return &translator.Result{TranslatedText: c.text, Model: "canned"}, nil
}

func (c *cannedTranslator) Healthy(ctx context.Context) error { return nil }

// setupBenchmarkStack builds the shared dependency graph once for all
// benchmarks
func setupBenchmarkStack() {
	benchOnce.Do(func() {
		benchStore = lexicon.NewWithDefaults()
		benchChecker = safety.NewChecker(benchStore)

		tr := &cannedTranslator{text: benchTranslation}
		healthChecker := health.NewHealthChecker(benchStore, tr, false)
		benchHandler = handlers.NewTranslationHandler(
			benchStore, benchChecker, tr,
			validation.NewValidator(10000), healthChecker, metrics.NewMonitor(),
		)
		benchRouter = buildTestRouter(benchHandler)
	})
}

// marshalTranslateRequest builds the request payload once, outside the
// timed loop
func marshalTranslateRequest(b *testing.B, mask bool) []byte {
	b.Helper()

	payload, err := json.Marshal(handlers.TranslationRequest{
		Text:       benchSourceText,
		SourceLang: safety.LangFrench,
		TargetLang: safety.LangWolof,
		Mask:       mask,
	})
	if err != nil {
		b.Fatalf("Failed to marshal translation request: %v", err)
	}
	return payload
}

// warmTranslate runs one request before the timer starts and fails fast
// if the pipeline rejects the fixture
func warmTranslate(b *testing.B, payload []byte) {
	b.Helper()

	req := httptest.NewRequest("POST", "/translate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	benchRouter.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		b.Fatalf("Warm-up translation returned status %d: %s", w.Code, w.Body.String())
	}
}

// Benchmark the full translation endpoint with the default strategy
func BenchmarkTranslateEndpoint(b *testing.B) {
	setupBenchmarkStack()
	payload := marshalTranslateRequest(b, false)
	warmTranslate(b, payload)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("POST", "/translate", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		benchRouter.ServeHTTP(w, req)
	}
}

// Benchmark the full translation endpoint with placeholder masking
func BenchmarkTranslateEndpointMasked(b *testing.B) {
	setupBenchmarkStack()
	payload := marshalTranslateRequest(b, true)
	warmTranslate(b, payload)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("POST", "/translate", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		benchRouter.ServeHTTP(w, req)
	}
}

// Benchmark concurrent translation requests
func BenchmarkConcurrentTranslations(b *testing.B) {
	setupBenchmarkStack()
	payload := marshalTranslateRequest(b, false)
	warmTranslate(b, payload)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			req := httptest.NewRequest("POST", "/translate", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			benchRouter.ServeHTTP(w, req)
		}
	})
}

// Benchmark the ordered safety checks in isolation
func BenchmarkSafetyVerify(b *testing.B) {
	setupBenchmarkStack()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		benchChecker.Verify(benchSourceText, benchTranslation, safety.LangFrench, nil)
	}
}

// Benchmark critical element extraction
func BenchmarkSafetyExtract(b *testing.B) {
	setupBenchmarkStack()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		benchChecker.Extract(benchSourceText)
	}
}

// Benchmark a full mask and unmask round trip
func BenchmarkMaskUnmask(b *testing.B) {
	setupBenchmarkStack()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		masked, mapping := benchChecker.Mask(benchSourceText)
		benchChecker.Unmask(masked, mapping)
	}
}

// Benchmark dosage repair on a translation with one corrupted dosage
func BenchmarkRestore(b *testing.B) {
	setupBenchmarkStack()

	corrupted := "Jëlal 2 comprimés Doliprane 900 mg. Bul weesu 6 comprimés ci bés."

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		benchChecker.Restore(benchSourceText, corrupted)
	}
}

// Benchmark the whole-word medication scan over the full built-in lexicon
func BenchmarkLexiconFindAll(b *testing.B) {
	setupBenchmarkStack()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		benchStore.FindAll(benchSourceText)
	}
}

// Benchmark a single name lookup
func BenchmarkLexiconIsKnown(b *testing.B) {
	setupBenchmarkStack()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		benchStore.IsKnown("doliprane")
	}
}

// Benchmark the lexicon check endpoint
func BenchmarkLexiconCheckEndpoint(b *testing.B) {
	setupBenchmarkStack()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/lexicon/check/Doliprane", nil)
		w := httptest.NewRecorder()

		// Create chi router context to properly extract URL parameters
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("word", "Doliprane")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		benchHandler.LexiconCheck(w, req)
	}
}

// Benchmark the health endpoint
func BenchmarkHealthEndpoint(b *testing.B) {
	setupBenchmarkStack()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		benchRouter.ServeHTTP(w, req)
	}
}
