package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/talentradar/signal-engine/internal/domain"
)

// SourceRunMetricRepository persists and reads back per-run source metrics.
// Rows are append-only: ingestion inserts one batch at run end and the
// ranker reads them back in bulk; nothing ever updates a persisted row.
type SourceRunMetricRepository struct {
	db *sqlx.DB
}

// NewSourceRunMetricRepository creates a new source run metric repository.
func NewSourceRunMetricRepository(db *sqlx.DB) *SourceRunMetricRepository {
	return &SourceRunMetricRepository{db: db}
}

// InsertBatch appends one run's metric rows in a single statement.
func (r *SourceRunMetricRepository) InsertBatch(ctx context.Context, metrics []*domain.SourceRunMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	query := `
		INSERT INTO source_run_metrics (
			pipeline, region, source_name, source_url,
			candidates, geo_validated, quality_passed, inserted,
			rejected, duplicates, errors, pending, validated,
			avg_geo_confidence
		)
		VALUES (
			:pipeline, :region, :source_name, :source_url,
			:candidates, :geo_validated, :quality_passed, :inserted,
			:rejected, :duplicates, :errors, :pending, :validated,
			:avg_geo_confidence
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, metrics); err != nil {
		return fmt.Errorf("failed to insert run metrics: %w", err)
	}
	return nil
}

// ListSince returns metric rows for a pipeline and region created at or
// after the given time, newest first, capped at limit rows.
func (r *SourceRunMetricRepository) ListSince(ctx context.Context, pipeline string, region domain.Region, since time.Time, limit int) ([]domain.SourceRunMetric, error) {
	query := `
		SELECT id, pipeline, region, source_name, source_url,
		       candidates, geo_validated, quality_passed, inserted,
		       rejected, duplicates, errors, pending, validated,
		       avg_geo_confidence, created_at
		FROM source_run_metrics
		WHERE pipeline = $1 AND region = $2 AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT $4
	`

	metrics := make([]domain.SourceRunMetric, 0, limit)
	if err := r.db.SelectContext(ctx, &metrics, query, pipeline, region, since, limit); err != nil {
		return nil, fmt.Errorf("failed to list run metrics: %w", err)
	}
	return metrics, nil
}
