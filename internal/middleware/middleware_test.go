package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bryanwahyu/truthlens/internal/domain/analysis"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) Check(ctx context.Context) error { return f(ctx) }

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 1 || body["status"] != "healthy" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadinessHandler(t *testing.T) {
	ok := checkerFunc(func(context.Context) error { return nil })
	down := checkerFunc(func(context.Context) error { return errors.New("bucket gone") })

	rec := httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"storage": ok})(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"storage": down})(rec, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unready status = %d", rec.Code)
	}
	var body HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Checks["storage"].Message != "bucket gone" {
		t.Fatalf("checks = %+v", body.Checks)
	}
}

func TestMetrics(t *testing.T) {
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMetrics(clock)

	m.RecordAnalysis("text", analysis.ReliabilityHigh, nil)
	m.RecordAnalysis("upload", analysis.ReliabilityLow, nil)
	m.RecordAnalysis("upload", "", errors.New("boom"))

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	clock.t = clock.t.Add(90 * time.Second)

	rec := httptest.NewRecorder()
	m.Handler(rec, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	var snap struct {
		RequestsTotal   uint64            `json:"requests_total"`
		RequestsSuccess uint64            `json:"requests_success"`
		RequestsFailed  uint64            `json:"requests_failed"`
		AnalysesTotal   uint64            `json:"analyses_total"`
		AnalysesFailed  uint64            `json:"analyses_failed"`
		ByLevel         map[string]uint64 `json:"analyses_by_level"`
		ByMode          map[string]uint64 `json:"analyses_by_mode"`
		Uptime          float64           `json:"uptime_seconds"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.RequestsTotal != 2 || snap.RequestsSuccess != 1 || snap.RequestsFailed != 1 {
		t.Errorf("requests = %+v", snap)
	}
	if snap.AnalysesTotal != 3 || snap.AnalysesFailed != 1 {
		t.Errorf("analyses = %d/%d", snap.AnalysesTotal, snap.AnalysesFailed)
	}
	if snap.ByLevel["high"] != 1 || snap.ByLevel["low"] != 1 || snap.ByMode["upload"] != 2 {
		t.Errorf("by level %v, by mode %v", snap.ByLevel, snap.ByMode)
	}
	if snap.Uptime != 90 {
		t.Errorf("uptime = %v", snap.Uptime)
	}
}
