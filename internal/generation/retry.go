package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy bounds retries of a model call.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns three retries starting at two seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

// IsPermanent reports errors that must not be retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidConfig)
}

// WithRetry runs call until it succeeds, fails permanently, or the policy is
// exhausted. Between attempts it sleeps an exponentially growing delay with
// jitter: base * 2^attempt * [0.5, 1.0).
func WithRetry(ctx context.Context, logger *slog.Logger, policy RetryPolicy, operation string, call func(ctx context.Context) error) error {
	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		err := call(ctx)
		if err == nil {
			if attempt > 0 {
				logger.InfoContext(ctx, "model call succeeded after retry",
					"operation", operation,
					"attempt", attempt+1)
			}
			return nil
		}

		if IsPermanent(err) {
			logger.WarnContext(ctx, "permanent error occurred, not retrying",
				"operation", operation,
				"error", err)
			return err
		}

		if attempt >= maxRetries {
			logger.WarnContext(ctx, "maximum retry attempts reached",
				"operation", operation,
				"max_retries", maxRetries,
				"error", err)
			return fmt.Errorf("%w: %s failed after %d attempts: %v",
				ErrTransientFailure, operation, attempt+1, err)
		}

		backoff := float64(policy.BaseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))

		logger.InfoContext(ctx, "retrying model call after delay",
			"operation", operation,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}
