// Package telemetry provides OpenTelemetry instrumentation for the signal
// engine. It exports Prometheus metrics and provides tracing capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "signal-engine"

// Metrics holds all signal engine Prometheus metrics
type Metrics struct {
	// Evaluation metrics
	SignalsEvaluated   *prometheus.CounterVec
	SignalsAccepted    *prometheus.CounterVec
	SignalsRejected    *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	BatchSize          prometheus.Histogram

	// Ingestion run metrics
	SignalsInserted    *prometheus.CounterVec
	DuplicatesSkipped  *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	SourcesRanked      prometheus.Histogram
	MetricWriteFailed  prometheus.Counter
	StorageWriteFailed prometheus.Counter

	// Ranking metrics
	PriorityMapDuration prometheus.Histogram
	PriorityHistoryRows prometheus.Histogram
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initEvaluationMetrics(m)
	initRunMetrics(m)
	initRankingMetrics(m)
	return m
}

func initEvaluationMetrics(m *Metrics) {
	m.SignalsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_engine_evaluated_total",
		Help: "Total candidates run through the quality pipeline",
	}, []string{"pipeline", "region"})

	m.SignalsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_engine_accepted_total",
		Help: "Total candidates accepted, by signal category",
	}, []string{"pipeline", "category"})

	m.SignalsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_engine_rejected_total",
		Help: "Total candidates rejected, by reason code",
	}, []string{"pipeline", "reason"})

	m.EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signal_engine_evaluation_duration_seconds",
		Help:    "Time to evaluate a single candidate",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signal_engine_batch_size",
		Help:    "Number of candidates per evaluation batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
	})
}

func initRunMetrics(m *Metrics) {
	m.SignalsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_engine_inserted_total",
		Help: "Total accepted signals persisted to the signal store",
	}, []string{"pipeline", "region"})

	m.DuplicatesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signal_engine_duplicates_total",
		Help: "Total accepted signals suppressed by the dedupe-key check",
	}, []string{"pipeline", "region"})

	m.RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "signal_engine_run_duration_seconds",
		Help:    "End-to-end duration of one ingestion run",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"pipeline"})

	m.SourcesRanked = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signal_engine_sources_ranked",
		Help:    "Number of sources ranked per run",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})

	m.MetricWriteFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_engine_metric_write_failures_total",
		Help: "Run metric batch inserts that failed",
	})

	m.StorageWriteFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signal_engine_storage_write_failures_total",
		Help: "Signal store writes that failed",
	})
}

func initRankingMetrics(m *Metrics) {
	m.PriorityMapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signal_engine_priority_map_duration_seconds",
		Help:    "Time to build the source priority map",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	m.PriorityHistoryRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signal_engine_priority_history_rows",
		Help:    "Historical metric rows consulted per priority map build",
		Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 1500},
	})
}

// RecordEvaluation records one candidate evaluation outcome.
func (p *Provider) RecordEvaluation(ctx context.Context, pipeline, region string, duration time.Duration) {
	p.Metrics.SignalsEvaluated.WithLabelValues(pipeline, region).Inc()
	p.Metrics.EvaluationDuration.Observe(duration.Seconds())
}

// RecordAccepted records an accepted signal by category.
func (p *Provider) RecordAccepted(ctx context.Context, pipeline, category string) {
	p.Metrics.SignalsAccepted.WithLabelValues(pipeline, category).Inc()
}

// RecordRejected records a rejection by reason code.
func (p *Provider) RecordRejected(ctx context.Context, pipeline, reason string) {
	p.Metrics.SignalsRejected.WithLabelValues(pipeline, reason).Inc()
}

// RecordInserted records signals persisted for a run.
func (p *Provider) RecordInserted(ctx context.Context, pipeline, region string, count int) {
	p.Metrics.SignalsInserted.WithLabelValues(pipeline, region).Add(float64(count))
}

// RecordDuplicates records dedupe-suppressed signals for a run.
func (p *Provider) RecordDuplicates(ctx context.Context, pipeline, region string, count int) {
	p.Metrics.DuplicatesSkipped.WithLabelValues(pipeline, region).Add(float64(count))
}

// RecordRun records the end-to-end duration of one ingestion run.
func (p *Provider) RecordRun(ctx context.Context, pipeline string, sources int, duration time.Duration) {
	p.Metrics.RunDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
	p.Metrics.SourcesRanked.Observe(float64(sources))
}

// RecordPriorityMap records one priority map build.
func (p *Provider) RecordPriorityMap(ctx context.Context, historyRows int, duration time.Duration) {
	p.Metrics.PriorityMapDuration.Observe(duration.Seconds())
	p.Metrics.PriorityHistoryRows.Observe(float64(historyRows))
}

// RecordBatchSize records the size of an evaluation batch.
func (p *Provider) RecordBatchSize(size int) {
	p.Metrics.BatchSize.Observe(float64(size))
}

// IncrementMetricWriteFailure counts a failed run-metric batch insert.
func (p *Provider) IncrementMetricWriteFailure() {
	p.Metrics.MetricWriteFailed.Inc()
}

// IncrementStorageWriteFailure counts a failed signal store write.
func (p *Provider) IncrementStorageWriteFailure() {
	p.Metrics.StorageWriteFailed.Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
