package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/evaluator"
	"github.com/talentradar/signal-engine/internal/logger"
	"github.com/talentradar/signal-engine/internal/processor"
	"github.com/talentradar/signal-engine/internal/ranker"
	"github.com/talentradar/signal-engine/internal/telemetry"
	"github.com/talentradar/signal-engine/internal/testhelpers"
)

const testSecret = "test-secret"

// One provider for the whole test binary: promauto registers into the
// global Prometheus registry and double registration panics.
var (
	testProvider     *telemetry.Provider
	testProviderOnce sync.Once
)

func testTelemetry() *telemetry.Provider {
	testProviderOnce.Do(func() {
		testProvider = telemetry.NewProvider()
	})
	return testProvider
}

type stubChecker struct {
	err error
}

func (s *stubChecker) TestConnection(_ context.Context) error {
	return s.err
}

type testEnv struct {
	router  *gin.Engine
	signals *testhelpers.MockSignalStore
	metrics *testhelpers.MockMetricStore
}

func newTestEnv(t *testing.T, checks map[string]HealthChecker) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	tel := testTelemetry()

	eval := evaluator.New(log)
	batch := processor.NewBatchEvaluator(eval, 2, log)
	signals := testhelpers.NewMockSignalStore()
	metrics := testhelpers.NewMockMetricStore()
	rank := ranker.New(metrics, log)

	runner := processor.NewRunner(processor.RunnerConfig{
		Pipeline:      "pe_signals",
		Batch:         batch,
		Ranker:        rank,
		Signals:       signals,
		Metrics:       metrics,
		Limiter:       processor.NewRateLimiter(100, 100, log),
		Telemetry:     tel,
		RecencyWindow: 14 * 24 * time.Hour,
		Logger:        log,
	})

	handler := NewHandler(HandlerConfig{
		Evaluator: eval,
		Batch:     batch,
		Runner:    runner,
		Ranker:    rank,
		Metrics:   metrics,
		Telemetry: tel,
		Pipeline:  "pe_signals",
		Checks:    checks,
		Logger:    log,
	})

	router := gin.New()
	setupRoutes(router, handler, testSecret)

	return &testEnv{router: router, signals: signals, metrics: metrics}
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Sub: "tester",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := doJSON(t, env.router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyCheck(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		env := newTestEnv(t, map[string]HealthChecker{
			"elasticsearch": &stubChecker{},
			"postgres":      &stubChecker{},
		})

		rec := doJSON(t, env.router, http.MethodGet, "/ready", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("dependency down", func(t *testing.T) {
		env := newTestEnv(t, map[string]HealthChecker{
			"elasticsearch": &stubChecker{err: errors.New("connection refused")},
		})

		rec := doJSON(t, env.router, http.MethodGet, "/ready", "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, env.router, http.MethodPost, "/api/v1/evaluate", tt.token, EvaluateRequest{
				Input: domain.SignalInput{Title: "anything"},
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/evaluate", token, EvaluateRequest{
		Input: domain.SignalInput{
			Title:          "Blackstone closes Fund IX at $8.2 billion hard cap",
			Description:    "The London based private equity firm announced the final close.",
			ExpectedRegion: "london",
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp EvaluateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Result.Accepted {
		t.Fatalf("Accepted = false, reason %q", resp.Result.Reason)
	}
	if resp.Result.Company != "Blackstone" {
		t.Errorf("Company = %q, want %q", resp.Result.Company, "Blackstone")
	}
	if resp.Result.SignalType != domain.CategoryFunding {
		t.Errorf("SignalType = %q, want %q", resp.Result.SignalType, domain.CategoryFunding)
	}
}

func TestEvaluateInvalidBody(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestEvaluateBatchEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/evaluate/batch", token, BatchEvaluateRequest{
		Inputs: []domain.SignalInput{
			{
				Title:          "Apex Capital raises $500 million for growth fund",
				Description:    "The London firm's buyout strategy attracted strong demand.",
				ExpectedRegion: "london",
			},
			{
				Title:       "Heavy rain forecast for the weekend",
				Description: "A storm front brings heavy weather and flooding risk to the coast.",
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp BatchEvaluateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("Total = %d, want 2", resp.Total)
	}
	if resp.Accepted != 1 || resp.Rejected != 1 {
		t.Errorf("Accepted/Rejected = %d/%d, want 1/1", resp.Accepted, resp.Rejected)
	}
}

func TestEvaluateBatchEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/evaluate/batch", token, BatchEvaluateRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestIngestEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/ingest", token, IngestRequest{
		Region: "london",
		Sources: []processor.Source{
			{
				Name: "Example Wire",
				URL:  "https://news.example.com/feed",
				Candidates: []domain.SignalInput{
					{
						Title:       "Blackstone closes Fund IX at $8.2 billion hard cap",
						Description: "The London based private equity firm announced the final close.",
					},
					{
						Title:       "Heavy rain forecast for the weekend",
						Description: "A storm front brings heavy weather and flooding risk to the coast.",
					},
				},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var report processor.RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Scraped != 2 {
		t.Errorf("Scraped = %d, want 2", report.Scraped)
	}
	if report.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", report.Inserted)
	}
	if env.signals.IndexedCount() != 1 {
		t.Errorf("IndexedCount = %d, want 1", env.signals.IndexedCount())
	}
	if len(env.metrics.InsertedMetrics()) != 1 {
		t.Errorf("metric rows = %d, want 1", len(env.metrics.InsertedMetrics()))
	}
}

func TestSourcePrioritiesEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	env.metrics.Rows = []domain.SourceRunMetric{
		{
			Pipeline: "pe_signals", Region: domain.RegionLondon,
			SourceURL: "good.example.com/feed",
			Candidates: 100, QualityPassed: 90, GeoValidated: 80,
			Inserted: 70, Validated: 60, AvgGeoConfidence: 90,
		},
		{
			Pipeline: "pe_signals", Region: domain.RegionLondon,
			SourceURL: "bad.example.com/feed",
			Candidates: 100, QualityPassed: 5, GeoValidated: 2,
			Inserted: 1, Errors: 40, AvgGeoConfidence: 10,
		},
	}

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/sources/priority?region=london", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp PriorityListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("Total = %d, want 2", resp.Total)
	}
	if resp.Sources[0].URL != "good.example.com/feed" {
		t.Errorf("top source = %q, want good.example.com/feed", resp.Sources[0].URL)
	}
	if resp.Sources[0].Priority <= resp.Sources[1].Priority {
		t.Errorf("priorities not descending: %v", resp.Sources)
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	env.metrics.Rows = []domain.SourceRunMetric{
		{SourceURL: "a.example.com/feed", Candidates: 10, Inserted: 4, Rejected: 5, Duplicates: 1, AvgGeoConfidence: 80},
		{SourceURL: "a.example.com/feed", Candidates: 6, Inserted: 2, Rejected: 4, AvgGeoConfidence: 60},
		{SourceURL: "b.example.com/feed", Candidates: 3, Inserted: 0, Rejected: 3, Errors: 1},
	}

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Runs != 3 {
		t.Errorf("Runs = %d, want 3", resp.Runs)
	}
	if resp.Candidates != 19 || resp.Inserted != 6 || resp.Rejected != 12 {
		t.Errorf("totals = %d/%d/%d, want 19/6/12", resp.Candidates, resp.Inserted, resp.Rejected)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(resp.Sources))
	}
	if resp.Sources[0].SourceURL != "a.example.com/feed" {
		t.Errorf("top source = %q, want a.example.com/feed", resp.Sources[0].SourceURL)
	}
	if got := resp.Sources[0].AvgGeoConfidence; got != 70 {
		t.Errorf("AvgGeoConfidence = %v, want 70", got)
	}
}

func TestAppendMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)

	rec := doJSON(t, env.router, http.MethodPost, "/api/v1/metrics", token, AppendMetricsRequest{
		Metrics: []*domain.SourceRunMetric{
			{
				Region:    domain.RegionLondon,
				SourceURL: "https://www.Feed.example.com/pe/",
				Validated: 3,
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	inserted := env.metrics.InsertedMetrics()
	if len(inserted) != 1 {
		t.Fatalf("inserted rows = %d, want 1", len(inserted))
	}
	if inserted[0].Pipeline != "pe_signals" {
		t.Errorf("Pipeline = %q, want pe_signals (defaulted)", inserted[0].Pipeline)
	}
	if inserted[0].SourceURL != "feed.example.com/pe" {
		t.Errorf("SourceURL = %q, want feed.example.com/pe (normalized)", inserted[0].SourceURL)
	}
}

func TestStatsQueryFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	token := signToken(t, testSecret)
	env.metrics.ListErr = errors.New("db down")

	rec := doJSON(t, env.router, http.MethodGet, "/api/v1/stats", token, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
