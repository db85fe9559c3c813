// Package bootstrap wires the engine's components from configuration.
// Both binaries share this wiring so they agree on defaults.
package bootstrap

import (
	"context"
	"fmt"
	"strconv"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/jmoiron/sqlx"

	"github.com/talentradar/signal-engine/internal/api"
	"github.com/talentradar/signal-engine/internal/config"
	"github.com/talentradar/signal-engine/internal/database"
	"github.com/talentradar/signal-engine/internal/evaluator"
	"github.com/talentradar/signal-engine/internal/logger"
	"github.com/talentradar/signal-engine/internal/processor"
	"github.com/talentradar/signal-engine/internal/ranker"
	"github.com/talentradar/signal-engine/internal/storage"
	"github.com/talentradar/signal-engine/internal/telemetry"
)

// Components holds the wired engine.
type Components struct {
	DB        *sqlx.DB
	Signals   *storage.SignalStorage
	Metrics   *database.SourceRunMetricRepository
	Evaluator *evaluator.Evaluator
	Batch     *processor.BatchEvaluator
	Ranker    *ranker.Ranker
	Runner    *processor.Runner
	Handler   *api.Handler
	Telemetry *telemetry.Provider
	Log       logger.Logger
}

// NewLogger builds the process logger from config.
func NewLogger(cfg *config.Config) (logger.Logger, error) {
	outputPaths := []string{"stdout"}
	if cfg.Logging.Output != "" {
		outputPaths = []string{cfg.Logging.Output}
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
		OutputPaths: outputPaths,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

// NewComponents connects to Postgres and Elasticsearch and wires the
// evaluator, ranker, runner and API handler.
func NewComponents(ctx context.Context, cfg *config.Config, log logger.Logger) (*Components, error) {
	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     strconv.Itoa(cfg.Database.Port),
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info("Connected to PostgreSQL",
		logger.String("host", cfg.Database.Host),
		logger.String("database", cfg.Database.Database),
	)

	esClient, err := es.NewClient(es.Config{
		Addresses:  []string{cfg.Elasticsearch.URL},
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	signals := storage.NewSignalStorage(esClient)
	if err = signals.TestConnection(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verify elasticsearch connection: %w", err)
	}
	log.Info("Connected to Elasticsearch", logger.String("url", cfg.Elasticsearch.URL))

	if err = signals.EnsureSignalIndex(ctx, cfg.Service.Pipeline); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure signal index: %w", err)
	}

	metrics := database.NewSourceRunMetricRepository(db)
	tel := telemetry.NewProvider()

	eval := evaluator.New(log)
	batch := processor.NewBatchEvaluator(eval, cfg.Service.Concurrency, log)
	rank := ranker.NewWithLookback(metrics, log, cfg.Ranking.LookbackDays)

	runner := processor.NewRunner(processor.RunnerConfig{
		Pipeline:      cfg.Service.Pipeline,
		Batch:         batch,
		Ranker:        rank,
		Signals:       signals,
		Metrics:       metrics,
		Limiter:       processor.NewRateLimiter(cfg.Service.WriteRPS, cfg.Service.WriteRPS, log),
		Telemetry:     tel,
		RecencyWindow: cfg.Ranking.RecencyWindow,
		Logger:        log,
	})

	handler := api.NewHandler(api.HandlerConfig{
		Evaluator: eval,
		Batch:     batch,
		Runner:    runner,
		Ranker:    rank,
		Metrics:   metrics,
		Telemetry: tel,
		Pipeline:  cfg.Service.Pipeline,
		Checks: map[string]api.HealthChecker{
			"postgres":      &dbChecker{db: db},
			"elasticsearch": signals,
		},
		Logger: log,
	})

	return &Components{
		DB:        db,
		Signals:   signals,
		Metrics:   metrics,
		Evaluator: eval,
		Batch:     batch,
		Ranker:    rank,
		Runner:    runner,
		Handler:   handler,
		Telemetry: tel,
		Log:       log,
	}, nil
}

// Close releases held connections.
func (c *Components) Close() {
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// dbChecker adapts sqlx ping to the API's readiness probe.
type dbChecker struct {
	db *sqlx.DB
}

func (d *dbChecker) TestConnection(ctx context.Context) error {
	return d.db.PingContext(ctx)
}
