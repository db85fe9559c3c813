package processor

import (
	"context"
	"time"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/logger"
	"github.com/talentradar/signal-engine/internal/ranker"
	"github.com/talentradar/signal-engine/internal/telemetry"
)

// Geo confidence observations per candidate, on the 0-100 metric scale.
const (
	geoConfidenceConfirmed    = 100
	geoConfidenceUndetermined = 50
	geoConfidenceMismatch     = 0
)

// SignalStore persists accepted signals and answers recency lookups.
type SignalStore interface {
	BulkIndexSignals(ctx context.Context, signals []*domain.Signal) error
	RecentDedupeKeys(ctx context.Context, pipeline string, window time.Duration) (map[string]struct{}, error)
}

// MetricWriter appends run metric rows at run end.
type MetricWriter interface {
	InsertBatch(ctx context.Context, metrics []*domain.SourceRunMetric) error
}

// Source is one scrape source with the candidates ingestion fetched from
// it. Fetching itself happens upstream; the runner only evaluates.
type Source struct {
	Name       string               `json:"name"`
	URL        string               `json:"url"`
	Candidates []domain.SignalInput `json:"candidates"`
}

// RunReport aggregates one ingestion run for operators: systematic
// rejection causes show up here without per-item debugging.
type RunReport struct {
	Pipeline         string                `json:"pipeline"`
	Region           domain.Region         `json:"region"`
	Scraped          int                   `json:"scraped"`
	Accepted         int                   `json:"accepted"`
	Inserted         int                   `json:"inserted"`
	Duplicates       int                   `json:"duplicates"`
	Errors           int                   `json:"errors"`
	RejectedByReason map[string]int        `json:"rejected_by_reason"`
	RankedSources    []domain.RankedSource `json:"ranked_sources"`
}

// Runner executes one ingestion run end to end: rank sources, evaluate
// candidates in ranked order, suppress duplicates, persist signals and
// append run metrics.
type Runner struct {
	pipeline      string
	batch         *BatchEvaluator
	rank          *ranker.Ranker
	signals       SignalStore
	metrics       MetricWriter
	limiter       *RateLimiter
	tel           *telemetry.Provider
	recencyWindow time.Duration
	log           logger.Logger
}

// RunnerConfig wires a Runner's collaborators.
type RunnerConfig struct {
	Pipeline      string
	Batch         *BatchEvaluator
	Ranker        *ranker.Ranker
	Signals       SignalStore
	Metrics       MetricWriter
	Limiter       *RateLimiter
	Telemetry     *telemetry.Provider
	RecencyWindow time.Duration
	Logger        logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{
		pipeline:      cfg.Pipeline,
		batch:         cfg.Batch,
		rank:          cfg.Ranker,
		signals:       cfg.Signals,
		metrics:       cfg.Metrics,
		limiter:       cfg.Limiter,
		tel:           cfg.Telemetry,
		recencyWindow: cfg.RecencyWindow,
		log:           cfg.Logger,
	}
}

// Run processes all sources for one region. The priority map is built once
// and fixed for the whole run; sources are then visited in ranked order.
// Metric persistence is advisory: failures log and continue.
func (r *Runner) Run(ctx context.Context, region domain.Region, sources []Source) (*RunReport, error) {
	start := time.Now()

	report := &RunReport{
		Pipeline:         r.pipeline,
		Region:           region,
		RejectedByReason: make(map[string]int),
	}
	if len(sources) == 0 {
		return report, nil
	}

	priorities := r.rank.PriorityMap(ctx, r.pipeline, region)
	report.RankedSources = r.rank.RankSources(rankable(sources), priorities)

	seen := r.recentKeys(ctx)

	byURL := make(map[string]*Source, len(sources))
	for i := range sources {
		byURL[sources[i].URL] = &sources[i]
	}

	runMetrics := make([]*domain.SourceRunMetric, 0, len(sources))
	for _, ranked := range report.RankedSources {
		src, ok := byURL[ranked.URL]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		runMetrics = append(runMetrics, r.processSource(ctx, region, src, seen, report))
	}

	if err := r.metrics.InsertBatch(ctx, runMetrics); err != nil {
		r.log.Warn("run metric insert failed, metrics for this run are lost",
			logger.String("pipeline", r.pipeline),
			logger.Error(err),
		)
		if r.tel != nil {
			r.tel.IncrementMetricWriteFailure()
		}
	}

	if r.tel != nil {
		r.tel.RecordRun(ctx, r.pipeline, len(sources), time.Since(start))
	}
	r.log.Info("ingestion run complete",
		logger.String("pipeline", r.pipeline),
		logger.String("region", string(region)),
		logger.Int("scraped", report.Scraped),
		logger.Int("accepted", report.Accepted),
		logger.Int("inserted", report.Inserted),
		logger.Int("duplicates", report.Duplicates),
		logger.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// processSource evaluates one source's candidates and persists the
// accepted, non-duplicate signals. Returns the run metric for the source.
func (r *Runner) processSource(ctx context.Context, region domain.Region, src *Source, seen map[string]struct{}, report *RunReport) *domain.SourceRunMetric {
	metric := ranker.NewRunMetric(r.pipeline, region, src.Name, src.URL)

	candidates := make([]domain.SignalInput, len(src.Candidates))
	for i, cand := range src.Candidates {
		if cand.ExpectedRegion == "" {
			cand.ExpectedRegion = string(region)
		}
		if cand.Source == "" {
			cand.Source = src.URL
		}
		candidates[i] = cand
	}

	outcomes := r.batch.Evaluate(ctx, candidates)
	metric.Candidates = len(outcomes)
	report.Scraped += len(outcomes)
	if r.tel != nil {
		r.tel.RecordBatchSize(len(outcomes))
	}

	toInsert := make([]*domain.Signal, 0, len(outcomes))
	for i, outcome := range outcomes {
		res := outcome.Result
		metric.ObserveGeoConfidence(geoConfidence(res), i)

		if !res.Accepted {
			metric.Rejected++
			report.RejectedByReason[string(res.Reason)]++
			if r.tel != nil {
				r.tel.RecordRejected(ctx, r.pipeline, string(res.Reason))
			}
			continue
		}

		metric.QualityPassed++
		report.Accepted++
		if res.DetectedRegion != "" {
			metric.GeoValidated++
		}
		if r.tel != nil {
			r.tel.RecordAccepted(ctx, r.pipeline, string(res.SignalType))
		}

		if _, dup := seen[res.DedupeKey]; dup {
			metric.Duplicates++
			report.Duplicates++
			if r.tel != nil {
				r.tel.RecordDuplicates(ctx, r.pipeline, string(region), 1)
			}
			continue
		}
		seen[res.DedupeKey] = struct{}{}
		toInsert = append(toInsert, buildSignal(r.pipeline, outcome.Input, res))
	}

	r.persistSignals(ctx, region, toInsert, metric, report)
	return metric
}

// persistSignals writes one source's accepted signals and attributes the
// outcome to the source's metric row.
func (r *Runner) persistSignals(ctx context.Context, region domain.Region, signals []*domain.Signal, metric *domain.SourceRunMetric, report *RunReport) {
	if len(signals) == 0 {
		return
	}

	if err := r.limiter.Wait(ctx); err != nil {
		metric.Errors += len(signals)
		report.Errors += len(signals)
		return
	}

	if err := r.signals.BulkIndexSignals(ctx, signals); err != nil {
		r.log.Error("signal store write failed",
			logger.String("source_url", metric.SourceURL),
			logger.Int("signals", len(signals)),
			logger.Error(err),
		)
		metric.Errors += len(signals)
		report.Errors += len(signals)
		if r.tel != nil {
			r.tel.IncrementStorageWriteFailure()
		}
		return
	}

	metric.Inserted += len(signals)
	report.Inserted += len(signals)
	if r.tel != nil {
		r.tel.RecordInserted(ctx, r.pipeline, string(region), len(signals))
	}
}

// recentKeys loads the dedupe keys seen inside the recency window. The
// lookup is advisory; on failure the run proceeds with in-run dedupe only.
func (r *Runner) recentKeys(ctx context.Context) map[string]struct{} {
	keys, err := r.signals.RecentDedupeKeys(ctx, r.pipeline, r.recencyWindow)
	if err != nil {
		r.log.Warn("recent dedupe key lookup failed, run-local dedupe only",
			logger.String("pipeline", r.pipeline),
			logger.Error(err),
		)
		return make(map[string]struct{})
	}
	return keys
}

func rankable(sources []Source) []domain.RankedSource {
	out := make([]domain.RankedSource, len(sources))
	for i, src := range sources {
		out[i] = domain.RankedSource{Name: src.Name, URL: src.URL}
	}
	return out
}

func buildSignal(pipeline string, input domain.SignalInput, res domain.SignalResult) *domain.Signal {
	return &domain.Signal{
		Pipeline:       pipeline,
		Company:        res.Company,
		SignalType:     res.SignalType,
		ExpectedRegion: res.ExpectedRegion,
		DetectedRegion: res.DetectedRegion,
		Amount:         res.Amount,
		Currency:       res.Currency,
		KeyPeople:      res.KeyPeople,
		DealSignature:  res.DealSignature,
		DedupeKey:      res.DedupeKey,
		MustHave:       res.MustHave,
		Source:         input.Source,
		URL:            input.URL,
		Title:          input.Title,
		CreatedAt:      time.Now().UTC(),
	}
}

// geoConfidence maps one evaluation onto the 0-100 confidence scale: a
// text-confirmed region scores full marks, an undetermined region scores
// the midpoint and a mismatch scores zero.
func geoConfidence(res domain.SignalResult) float64 {
	switch {
	case res.Reason.IsRegionMismatch():
		return geoConfidenceMismatch
	case res.DetectedRegion == "":
		return geoConfidenceUndetermined
	case res.DetectedRegion == res.ExpectedRegion:
		return geoConfidenceConfirmed
	default:
		return geoConfidenceMismatch
	}
}
