package metrics

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/yamasante/medtranslate-api/interfaces"
)

// Compile-time check to ensure Monitor implements TranslationMonitor
var _ interfaces.TranslationMonitor = (*Monitor)(nil)

// Monitor accumulates translation request accounting for the
// /statistics endpoint. Counters are atomic; the duration aggregates
// share one small mutex.
type Monitor struct {
	totalRequests   atomic.Int64
	totalSuccesses  atomic.Int64
	totalFailures   atomic.Int64
	totalViolations atomic.Int64

	mu          sync.Mutex
	timedCount  int64
	totalTimeMs float64
	minTimeMs   float64
	maxTimeMs   float64
}

// DefaultMonitor is the process-wide monitor the composition root
// hands to the HTTP handler
var DefaultMonitor = NewMonitor()

// NewMonitor creates an empty Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// RecordRequest counts an incoming translation request
func (m *Monitor) RecordRequest() {
	m.totalRequests.Add(1)
}

// RecordSuccess counts a delivered translation and its duration
func (m *Monitor) RecordSuccess(durationMs float64) {
	m.totalSuccesses.Add(1)
	m.recordDuration(durationMs)
}

// RecordFailure counts a request that produced no usable translation.
// A negative duration means the translation never ran and is not
// folded into the timing aggregates.
func (m *Monitor) RecordFailure(durationMs float64) {
	m.totalFailures.Add(1)
	if durationMs >= 0 {
		m.recordDuration(durationMs)
	}
}

// RecordViolation counts a translation rejected by the safety checks.
// The Prometheus counter is incremented by the handler, this only feeds
// the /statistics aggregates.
func (m *Monitor) RecordViolation(code string) {
	m.totalViolations.Add(1)
}

func (m *Monitor) recordDuration(durationMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timedCount == 0 || durationMs < m.minTimeMs {
		m.minTimeMs = durationMs
	}
	if durationMs > m.maxTimeMs {
		m.maxTimeMs = durationMs
	}
	m.totalTimeMs += durationMs
	m.timedCount++
}

// Statistics returns the aggregate counters in the shape served by the
// /statistics endpoint.
func (m *Monitor) Statistics() map[string]any {
	requests := m.totalRequests.Load()
	successes := m.totalSuccesses.Load()

	successRate := 0.0
	if requests > 0 {
		successRate = round2(float64(successes) / float64(requests) * 100)
	}

	m.mu.Lock()
	avg := 0.0
	if m.timedCount > 0 {
		avg = round2(m.totalTimeMs / float64(m.timedCount))
	}
	minMs := round2(m.minTimeMs)
	maxMs := round2(m.maxTimeMs)
	m.mu.Unlock()

	return map[string]any{
		"total_requests":          requests,
		"total_successes":         successes,
		"total_failures":          m.totalFailures.Load(),
		"total_safety_violations": m.totalViolations.Load(),
		"success_rate_percent":    successRate,
		"performance": map[string]any{
			"avg_translation_ms": avg,
			"min_translation_ms": minMs,
			"max_translation_ms": maxMs,
		},
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
