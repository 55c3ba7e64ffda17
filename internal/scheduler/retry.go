package scheduler

import (
	"context"
	"time"

	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/telemetry"
)

// Policy bounds the retry loop for one pipeline stage.
type Policy struct {
	// MaxAttempts counts the first try; 3 means one try plus two retries.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; each further retry
	// doubles it.
	BaseDelay time.Duration
}

// DefaultPolicy mirrors the configured stage defaults.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 300 * time.Millisecond}
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent; the last error is returned. Backoff doubles per
// retry, and cancellation cuts the wait short.
func Retry(ctx context.Context, stage string, policy Policy, retryable func(error) bool, fn func(context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 300 * time.Millisecond
	}
	var err error
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn(ctx)
		if err == nil || retryable == nil || !retryable(err) || attempt >= policy.MaxAttempts {
			return err
		}

		delay := policy.BaseDelay << (attempt - 1)
		metrics.StageRetries.WithLabelValues(stage).Inc()
		telemetry.Info("stage retry", map[string]any{
			"stage":    stage,
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
			"error":    err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
