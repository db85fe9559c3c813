package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/evaluator"
	"github.com/talentradar/signal-engine/internal/logger"
	"github.com/talentradar/signal-engine/internal/processor"
	"github.com/talentradar/signal-engine/internal/ranker"
	"github.com/talentradar/signal-engine/internal/telemetry"
	"github.com/talentradar/signal-engine/internal/textutil"
)

const readyCheckTimeout = 5 * time.Second

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// MetricStore reads and appends run metric history.
type MetricStore interface {
	ranker.MetricStore
	InsertBatch(ctx context.Context, metrics []*domain.SourceRunMetric) error
}

// Handler handles HTTP requests for the signal engine API.
type Handler struct {
	eval     *evaluator.Evaluator
	batch    *processor.BatchEvaluator
	runner   *processor.Runner
	rank     *ranker.Ranker
	metrics  MetricStore
	tel      *telemetry.Provider
	pipeline string
	checks   map[string]HealthChecker
	log      logger.Logger
}

// HandlerConfig wires a Handler's collaborators.
type HandlerConfig struct {
	Evaluator *evaluator.Evaluator
	Batch     *processor.BatchEvaluator
	Runner    *processor.Runner
	Ranker    *ranker.Ranker
	Metrics   MetricStore
	Telemetry *telemetry.Provider
	Pipeline  string
	// Checks maps dependency name to its readiness probe.
	Checks map[string]HealthChecker
	Logger  logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		eval:     cfg.Evaluator,
		batch:    cfg.Batch,
		runner:   cfg.Runner,
		rank:     cfg.Ranker,
		metrics:  cfg.Metrics,
		tel:      cfg.Telemetry,
		pipeline: cfg.Pipeline,
		checks:   cfg.Checks,
		log:      cfg.Logger,
	}
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func (h *Handler) MetricsHandler() http.Handler {
	return h.tel.Handler()
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"pipeline": h.pipeline,
	})
}

// ReadyCheck handles GET /ready. It probes every registered dependency
// and reports 503 when any of them is unreachable.
func (h *Handler) ReadyCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyCheckTimeout)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check.TestConnection(ctx); err != nil {
			h.log.Warn("Readiness probe failed",
				logger.String("dependency", name),
				logger.Error(err),
			)
			deps[name] = "unavailable"
			ready = false
			continue
		}
		deps[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "dependencies": deps})
}

// Evaluate handles POST /api/v1/evaluate.
func (h *Handler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid evaluate request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	result := h.eval.Evaluate(req.Input)
	h.recordEvaluation(c.Request.Context(), result, time.Since(start))

	c.JSON(http.StatusOK, EvaluateResponse{Result: result})
}

// EvaluateBatch handles POST /api/v1/evaluate/batch.
func (h *Handler) EvaluateBatch(c *gin.Context) {
	var req BatchEvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid batch evaluate request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.log.Info("Evaluating batch", logger.Int("batch_size", len(req.Inputs)))
	h.tel.RecordBatchSize(len(req.Inputs))

	start := time.Now()
	outcomes := h.batch.Evaluate(c.Request.Context(), req.Inputs)

	accepted := 0
	for i := range outcomes {
		if outcomes[i].Result.Accepted {
			accepted++
		}
	}
	h.tel.RecordEvaluation(c.Request.Context(), h.pipeline, "", time.Since(start))

	c.JSON(http.StatusOK, BatchEvaluateResponse{
		Outcomes: outcomes,
		Total:    len(outcomes),
		Accepted: accepted,
		Rejected: len(outcomes) - accepted,
	})
}

// Ingest handles POST /api/v1/ingest. It runs a full ingestion pass over
// the submitted sources: rank, evaluate, dedupe, persist.
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid ingest request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	region := evaluator.NormalizeExpectedRegion(req.Region)
	h.log.Info("Ingest run requested",
		logger.String("region", string(region)),
		logger.Int("sources", len(req.Sources)),
	)

	report, err := h.runner.Run(c.Request.Context(), region, req.Sources)
	if err != nil {
		h.log.Error("Ingest run failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// SourcePriorities handles GET /api/v1/sources/priority.
func (h *Handler) SourcePriorities(c *gin.Context) {
	region := evaluator.NormalizeExpectedRegion(c.Query("region"))

	priorities := h.rank.PriorityMap(c.Request.Context(), h.pipeline, region)

	c.JSON(http.StatusOK, toPriorityListResponse(h.pipeline, region, priorities))
}

// AppendMetrics handles POST /api/v1/metrics. Downstream collaborators
// (validation jobs, manual backfills) append run metric rows here; the
// ranker folds them into future priority maps.
func (h *Handler) AppendMetrics(c *gin.Context) {
	var req AppendMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid metrics request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, m := range req.Metrics {
		if m.Pipeline == "" {
			m.Pipeline = h.pipeline
		}
		m.SourceURL = textutil.NormalizeSourceURL(m.SourceURL)
	}

	if err := h.metrics.InsertBatch(c.Request.Context(), req.Metrics); err != nil {
		h.log.Error("Metric append failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inserted": len(req.Metrics)})
}

// Stats handles GET /api/v1/stats. It aggregates the recent run metric
// history into per-source and total counters.
func (h *Handler) Stats(c *gin.Context) {
	region := evaluator.NormalizeExpectedRegion(c.Query("region"))
	since := time.Now().UTC().AddDate(0, 0, -ranker.DefaultLookbackDays)

	rows, err := h.metrics.ListSince(c.Request.Context(), h.pipeline, region, since, statsRowLimit)
	if err != nil {
		h.log.Error("Stats query failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toStatsResponse(h.pipeline, region, since, rows))
}

func (h *Handler) recordEvaluation(ctx context.Context, result domain.SignalResult, duration time.Duration) {
	h.tel.RecordEvaluation(ctx, h.pipeline, string(result.ExpectedRegion), duration)
	if result.Accepted {
		h.tel.RecordAccepted(ctx, h.pipeline, string(result.SignalType))
		return
	}
	h.tel.RecordRejected(ctx, h.pipeline, string(result.Reason))
}
