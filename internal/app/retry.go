package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// Retrier wraps one external fetch in a bounded retry loop with a fixed delay.
// Only transient failures are retried.
type Retrier struct {
	maxAttempts int
	delay       time.Duration
	logger      *zap.Logger
}

// NewRetrier creates a retrier from a platform retry config
func NewRetrier(config domain.RetryConfig, logger *zap.Logger) *Retrier {
	maxAttempts := config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		delay:       config.Delay,
		logger:      logger,
	}
}

// MaxAttempts returns the attempt budget
func (r *Retrier) MaxAttempts() int {
	return r.maxAttempts
}

// Do runs fn until it succeeds, fails non-transiently, or the attempt budget
// is spent. The wait between attempts blocks the calling goroutine.
func (r *Retrier) Do(ctx context.Context, ref domain.ContentReference, op string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			r.logger.Info("Retrying fetch",
				zap.String("op", op),
				zap.String("platform", string(ref.Platform)),
				zap.String("identifier", ref.Identifier),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.maxAttempts))

			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		if !domain.IsTransient(err) {
			r.logger.Warn("Fetch failed permanently",
				zap.String("op", op),
				zap.String("platform", string(ref.Platform)),
				zap.String("identifier", ref.Identifier),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}

		lastErr = err
		r.logger.Warn("Fetch attempt failed",
			zap.String("op", op),
			zap.String("platform", string(ref.Platform)),
			zap.String("identifier", ref.Identifier),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	r.logger.Error("Fetch failed after retries",
		zap.String("op", op),
		zap.String("platform", string(ref.Platform)),
		zap.String("identifier", ref.Identifier),
		zap.Int("attempts", r.maxAttempts),
		zap.Error(lastErr))

	return &domain.Error{
		Kind:       domain.KindFetchExhausted,
		Platform:   ref.Platform,
		Identifier: ref.Identifier,
		Message:    fmt.Sprintf("Failed to connect to %s after multiple attempts", ref.Platform.DisplayName()),
		Err:        lastErr,
	}
}
