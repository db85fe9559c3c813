// Package processor orchestrates ingestion runs: ranking sources,
// evaluating candidates in parallel and writing signals and run metrics.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/talentradar/signal-engine/internal/domain"
	"github.com/talentradar/signal-engine/internal/evaluator"
	"github.com/talentradar/signal-engine/internal/logger"
)

const defaultConcurrency = 10

// EvalOutcome pairs one candidate with its evaluation result.
type EvalOutcome struct {
	Input  domain.SignalInput
	Result domain.SignalResult
}

// BatchEvaluator evaluates candidate batches in parallel using a worker
// pool. The evaluator itself is pure, so workers share it without locking.
type BatchEvaluator struct {
	eval        *evaluator.Evaluator
	concurrency int
	log         logger.Logger
}

// NewBatchEvaluator creates a batch evaluator with the given worker count.
func NewBatchEvaluator(eval *evaluator.Evaluator, concurrency int, log logger.Logger) *BatchEvaluator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &BatchEvaluator{eval: eval, concurrency: concurrency, log: log}
}

// Evaluate runs every candidate through the quality pipeline. Results come
// back in arbitrary order; callers aggregate counts, not positions.
func (b *BatchEvaluator) Evaluate(ctx context.Context, inputs []domain.SignalInput) []EvalOutcome {
	if len(inputs) == 0 {
		return nil
	}

	start := time.Now()

	jobs := make(chan domain.SignalInput, len(inputs))
	results := make(chan EvalOutcome, len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, jobs, results, &wg)
	}

	for _, input := range inputs {
		jobs <- input
	}
	close(jobs)

	wg.Wait()
	close(results)

	outcomes := make([]EvalOutcome, 0, len(inputs))
	accepted := 0
	for outcome := range results {
		if outcome.Result.Accepted {
			accepted++
		}
		outcomes = append(outcomes, outcome)
	}

	b.log.Debug("batch evaluated",
		logger.Int("candidates", len(inputs)),
		logger.Int("accepted", accepted),
		logger.Int("concurrency", b.concurrency),
		logger.Duration("duration", time.Since(start)),
	)
	return outcomes
}

func (b *BatchEvaluator) worker(ctx context.Context, jobs <-chan domain.SignalInput, results chan<- EvalOutcome, wg *sync.WaitGroup) {
	defer wg.Done()

	for input := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- EvalOutcome{Input: input, Result: b.eval.Evaluate(input)}
	}
}
