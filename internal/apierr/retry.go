package apierr

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig tunes the backoff loop. Each adapter carries its own
// defaults: transcription retries hardest because a whole file upload is
// at stake, translation and synthesis are cheaper to re-issue.
//
// Out-of-range values are normalized rather than rejected:
// MaxRetries < 0 means a single attempt, BaseDelay <= 0 becomes 1ms,
// MaxDelay <= 0 becomes BaseDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (c *RetryConfig) normalize() {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
}

// RetryWithBackoff runs fn up to 1+MaxRetries times, doubling the delay
// between attempts up to MaxDelay. shouldRetry decides per error; a
// non-retryable error returns immediately. Cancellation during a backoff
// wait returns ctx.Err, so an interrupted dub never sits out a delay.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()

	var zero T
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, delay); err != nil {
				return zero, err
			}
			delay = min(delay*2, cfg.MaxDelay)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !shouldRetry(lastErr) {
			return zero, lastErr
		}
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

// wait sleeps for d or until ctx is done, whichever comes first.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
