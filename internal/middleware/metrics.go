package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/truthlens/internal/application"
	"github.com/bryanwahyu/truthlens/internal/domain/analysis"
)

// Metrics stores application metrics
type Metrics struct {
	requestsTotal      atomic.Uint64
	requestsInProgress atomic.Int64
	requestsSuccess    atomic.Uint64
	requestsFailed     atomic.Uint64

	analysesTotal  atomic.Uint64
	analysesFailed atomic.Uint64
	byLevel        map[analysis.ReliabilityLevel]*atomic.Uint64
	byMode         map[string]*atomic.Uint64

	clock     application.Clock
	startTime time.Time
}

func NewMetrics(clock application.Clock) *Metrics {
	if clock == nil {
		clock = application.SystemClock{}
	}
	m := &Metrics{
		byLevel:   make(map[analysis.ReliabilityLevel]*atomic.Uint64),
		byMode:    make(map[string]*atomic.Uint64),
		clock:     clock,
		startTime: clock.Now(),
	}
	for _, l := range []analysis.ReliabilityLevel{
		analysis.ReliabilityHigh, analysis.ReliabilityMedium, analysis.ReliabilityLow, analysis.ReliabilityUnreliable,
	} {
		m.byLevel[l] = new(atomic.Uint64)
	}
	for _, mode := range []string{"text", "file", "image", "upload", "stored"} {
		m.byMode[mode] = new(atomic.Uint64)
	}
	return m
}

// RecordAnalysis counts one finished analysis. Maps are fixed after NewMetrics,
// so only the counters are written concurrently.
func (m *Metrics) RecordAnalysis(mode string, level analysis.ReliabilityLevel, err error) {
	m.analysesTotal.Add(1)
	if c, ok := m.byMode[mode]; ok {
		c.Add(1)
	}
	if err != nil {
		m.analysesFailed.Add(1)
		return
	}
	if c, ok := m.byLevel[level]; ok {
		c.Add(1)
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	levels := make(map[string]uint64, len(m.byLevel))
	for l, c := range m.byLevel {
		levels[string(l)] = c.Load()
	}
	modes := make(map[string]uint64, len(m.byMode))
	for mode, c := range m.byMode {
		modes[mode] = c.Load()
	}

	return map[string]interface{}{
		"requests_total":       m.requestsTotal.Load(),
		"requests_in_progress": m.requestsInProgress.Load(),
		"requests_success":     m.requestsSuccess.Load(),
		"requests_failed":      m.requestsFailed.Load(),
		"analyses_total":       m.analysesTotal.Load(),
		"analyses_failed":      m.analysesFailed.Load(),
		"analyses_by_level":    levels,
		"analyses_by_mode":     modes,
		"uptime_seconds":       m.clock.Now().Sub(m.startTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsTotal.Add(1)
		m.requestsInProgress.Add(1)
		defer m.requestsInProgress.Add(-1)

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		// Track success/failure based on status code
		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.requestsSuccess.Add(1)
		} else {
			m.requestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
