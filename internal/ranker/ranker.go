// Package ranker computes per-source priority scores from historical run
// metrics so ingestion spends effort on productive sources first.
package ranker

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/logger"
	"github.com/talentradar/signal-engine/internal/textutil"
)

// Scoring weights. Insertion rate dominates; quality and geo rates are
// secondary positives; duplicate, reject and error rates penalize wasted
// scrape effort as bounded ratios.
const (
	insertedWeight      = 0.38
	qualityWeight       = 0.22
	geoWeight           = 0.12
	validatedWeight     = 0.09
	geoConfidenceWeight = 0.17

	duplicatePenaltyWeight = 0.10
	rejectPenaltyWeight    = 0.10
	errorPenaltyWeight     = 0.08

	// explorationBoostCap keeps the log-damped volume term from
	// dominating the rate-based signals.
	explorationBoostCap = 0.08
)

const (
	// DefaultPriority is assigned to sources with no history.
	DefaultPriority = 0.45

	// DefaultLookbackDays bounds how far back history is consulted.
	DefaultLookbackDays = 21

	// maxMetricRows caps the history query cost.
	maxMetricRows = 1500

	// hashTieModulus folds the tie-break hash into a small range.
	hashTieModulus = 997

	maxGeoConfidence = 100
)

// MetricStore reads back persisted run metrics.
type MetricStore interface {
	ListSince(ctx context.Context, pipeline string, region domain.Region, since time.Time, limit int) ([]domain.SourceRunMetric, error)
}

// Ranker turns historical SourceRunMetric rows into a priority ordering.
type Ranker struct {
	store        MetricStore
	log          logger.Logger
	lookbackDays int
}

// New creates a Ranker with the default lookback window.
func New(store MetricStore, log logger.Logger) *Ranker {
	return &Ranker{store: store, log: log, lookbackDays: DefaultLookbackDays}
}

// NewWithLookback creates a Ranker with a custom lookback window in days.
func NewWithLookback(store MetricStore, log logger.Logger, lookbackDays int) *Ranker {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Ranker{store: store, log: log, lookbackDays: lookbackDays}
}

// NewRunMetric builds a zero-initialized metric row for one scrape run,
// with the source URL normalized into its identity-key form.
func NewRunMetric(pipeline string, region domain.Region, sourceName, sourceURL string) *domain.SourceRunMetric {
	return &domain.SourceRunMetric{
		Pipeline:   pipeline,
		Region:     region,
		SourceName: sourceName,
		SourceURL:  textutil.NormalizeSourceURL(sourceURL),
	}
}

// PriorityMap queries history for the pipeline and region, aggregates rows
// per normalized URL and scores each source. Storage failures degrade to
// an empty map: ranking is an optimization and must never block ingestion.
func (r *Ranker) PriorityMap(ctx context.Context, pipeline string, region domain.Region) map[string]float64 {
	since := time.Now().AddDate(0, 0, -r.lookbackDays)

	rows, err := r.store.ListSince(ctx, pipeline, region, since, maxMetricRows)
	if err != nil {
		r.log.Warn("priority history query failed, falling back to defaults",
			logger.String("pipeline", pipeline),
			logger.String("region", string(region)),
			logger.Error(err),
		)
		return map[string]float64{}
	}

	type aggregate struct {
		metric domain.SourceRunMetric
		runs   int
	}
	aggregates := make(map[string]*aggregate)

	for _, row := range rows {
		key := textutil.NormalizeSourceURL(row.SourceURL)
		agg, ok := aggregates[key]
		if !ok {
			aggregates[key] = &aggregate{metric: row, runs: 1}
			continue
		}
		agg.metric.Candidates += row.Candidates
		agg.metric.GeoValidated += row.GeoValidated
		agg.metric.QualityPassed += row.QualityPassed
		agg.metric.Inserted += row.Inserted
		agg.metric.Rejected += row.Rejected
		agg.metric.Duplicates += row.Duplicates
		agg.metric.Errors += row.Errors
		agg.metric.Pending += row.Pending
		agg.metric.Validated += row.Validated
		agg.metric.ObserveGeoConfidence(row.AvgGeoConfidence, agg.runs)
		agg.runs++
	}

	priorities := make(map[string]float64, len(aggregates))
	for key, agg := range aggregates {
		priorities[key] = Score(&agg.metric)
	}

	r.log.Debug("priority map computed",
		logger.String("pipeline", pipeline),
		logger.String("region", string(region)),
		logger.Int("history_rows", len(rows)),
		logger.Int("sources", len(priorities)),
	)
	return priorities
}

// Score computes the bounded [0,1] priority for one aggregated metric.
func Score(m *domain.SourceRunMetric) float64 {
	candidates := float64(m.Candidates)

	insertedRate := boundedRate(m.Inserted, m.Candidates)
	qualityRate := boundedRate(m.QualityPassed, m.Candidates)
	geoRate := boundedRate(m.GeoValidated, m.Candidates)
	validatedRate := boundedRate(m.Validated, m.Inserted)
	geoConfidence := m.AvgGeoConfidence / maxGeoConfidence

	explorationBoost := math.Min(math.Log10(candidates+1)/10, explorationBoostCap)

	duplicatePenalty := boundedRate(m.Duplicates, m.Candidates)
	rejectPenalty := boundedRate(m.Rejected, m.Candidates)
	errorPenalty := boundedRate(m.Errors, m.Candidates)

	score := insertedRate*insertedWeight +
		qualityRate*qualityWeight +
		geoRate*geoWeight +
		validatedRate*validatedWeight +
		geoConfidence*geoConfidenceWeight +
		explorationBoost -
		duplicatePenalty*duplicatePenaltyWeight -
		rejectPenalty*rejectPenaltyWeight -
		errorPenalty*errorPenaltyWeight

	return clamp01(score)
}

// boundedRate is count/denominator clamped to [0,1], with the denominator
// floored at 1 so empty runs never divide by zero.
func boundedRate(count, denominator int) float64 {
	if denominator < 1 {
		denominator = 1
	}
	return clamp01(float64(count) / float64(denominator))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RankSources orders sources by priority descending, looking each one up
// in the map by normalized URL and falling back to DefaultPriority. Exact
// ties break on a deterministic hash of the normalized URL, ascending, so
// neither alphabetical nor insertion order is systematically favored.
func (r *Ranker) RankSources(sources []domain.RankedSource, priorities map[string]float64) []domain.RankedSource {
	ranked := make([]domain.RankedSource, len(sources))
	for i, src := range sources {
		priority, ok := priorities[textutil.NormalizeSourceURL(src.URL)]
		if !ok {
			priority = DefaultPriority
		}
		ranked[i] = domain.RankedSource{Name: src.Name, URL: src.URL, Priority: priority}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority > ranked[j].Priority
		}
		return tieBreak(ranked[i].URL) < tieBreak(ranked[j].URL)
	})
	return ranked
}

func tieBreak(rawURL string) uint32 {
	return textutil.Hash32(textutil.NormalizeSourceURL(rawURL)) % hashTieModulus
}
