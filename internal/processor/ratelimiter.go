package processor

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/talentradar/signal-engine/internal/logger"
)

const defaultWriteRPS = 50

// RateLimiter throttles writes to the signal store so bulk ingestion runs
// cannot overwhelm the cluster.
type RateLimiter struct {
	limiter *rate.Limiter
	log     logger.Logger
}

// NewRateLimiter creates a limiter allowing rps operations per second with
// the given burst.
func NewRateLimiter(rps, burst int, log logger.Logger) *RateLimiter {
	if rps <= 0 {
		rps = defaultWriteRPS
	}
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

// Wait blocks until the limiter permits one operation or the context ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.log.Warn("rate limiter wait failed", logger.Error(err))
		return err
	}
	return nil
}

// Allow reports whether an operation may proceed without waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// SetLimit updates the sustained rate.
func (r *RateLimiter) SetLimit(rps int) {
	r.limiter.SetLimit(rate.Limit(rps))
	r.log.Info("rate limit updated", logger.Int("rps", rps))
}
