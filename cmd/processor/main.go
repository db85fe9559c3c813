// Command processor runs a single ingestion pass over a batch file of
// scraped sources and prints the run report as JSON. It exists for cron
// driven pipelines that do not want the long-lived HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/talentradar/signal-engine/internal/bootstrap"
	"github.com/talentradar/signal-engine/internal/config"
	"github.com/talentradar/signal-engine/internal/evaluator"
	"github.com/talentradar/signal-engine/internal/logger"
	"github.com/talentradar/signal-engine/internal/processor"
)

const defaultConfigPath = "config.yaml"

// batchFile is the on-disk input format for one run.
type batchFile struct {
	Region  string             `json:"region"`
	Sources []processor.Source `json:"sources"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "signal-engine processor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	inputPath := flag.String("input", "", "path to the batch JSON file (required)")
	region := flag.String("region", "", "expected region, overrides the batch file")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required -input flag")
	}

	batch, err := loadBatch(*inputPath)
	if err != nil {
		return err
	}
	if *region != "" {
		batch.Region = *region
	}
	if len(batch.Sources) == 0 {
		return fmt.Errorf("batch file %s contains no sources", *inputPath)
	}

	cfg, err := config.Load(config.GetConfigPath(defaultConfigPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	comps, err := bootstrap.NewComponents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comps.Close()

	expectedRegion := evaluator.NormalizeExpectedRegion(batch.Region)
	log.Info("Running ingestion batch",
		logger.String("input", *inputPath),
		logger.String("region", string(expectedRegion)),
		logger.Int("sources", len(batch.Sources)),
	)

	report, err := comps.Runner.Run(ctx, expectedRegion, batch.Sources)
	if err != nil {
		return fmt.Errorf("ingestion run: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func loadBatch(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var batch batchFile
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	return &batch, nil
}
