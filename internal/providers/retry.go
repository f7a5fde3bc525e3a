package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy retries an operation while Retryable accepts its error, up to
// MaxAttempts calls in total. Backoff receives the number of the attempt that
// just failed, starting at 1.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Retryable   func(err error) bool
}

// NoRetry runs an operation exactly once.
var NoRetry = RetryPolicy{MaxAttempts: 1}

// ImageGenerationRetry retries 503 answers three times in total, waiting
// 2s and then 4s.
func ImageGenerationRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     LinearBackoff(2 * time.Second),
		Retryable:   IsStatus(503),
	}
}

func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// IsStatus matches upstream HTTP errors carrying one of the given statuses.
func IsStatus(statuses ...int) func(error) bool {
	return func(err error) bool {
		var upstream *apperr.UpstreamHTTPError
		if !errors.As(err, &upstream) {
			return false
		}
		for _, s := range statuses {
			if upstream.Status == s {
				return true
			}
		}
		return false
	}
}

func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt := 0
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		if attempt >= maxAttempts {
			return 0, true
		}
		if p.Backoff == nil {
			return 0, false
		}
		return p.Backoff(attempt), false
	})

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt < maxAttempts && p.Retryable != nil && p.Retryable(err) {
			slog.Warn("retrying after failed attempt", "op", op, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}
