package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func always(error) bool { return true }

func TestRetrySucceedsWithinBudget(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "summarize", Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, always, func(context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "summarize", Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}, always, func(context.Context) error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestRetryStopsOnFatalError(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := Retry(context.Background(), "extract", Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}, func(err error) bool {
		return !errors.Is(err, fatal)
	}, func(context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRetryBacksOffExponentially(t *testing.T) {
	base := 20 * time.Millisecond
	calls := 0
	start := time.Now()
	_ = Retry(context.Background(), "summarize", Policy{MaxAttempts: 3, BaseDelay: base}, always, func(context.Context) error {
		calls++
		return errTransient
	})
	elapsed := time.Since(start)
	// Two waits: base then 2*base.
	if elapsed < 3*base {
		t.Fatalf("expected at least %v of backoff, elapsed %v", 3*base, elapsed)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryObservesCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Retry(ctx, "summarize", Policy{MaxAttempts: 5, BaseDelay: time.Minute}, always, func(context.Context) error {
		calls++
		return errTransient
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one attempt before cancellation, got %d", calls)
	}
}

func TestRetryObservesPriorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, "classify", DefaultPolicy(), always, func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no attempts on cancelled context, got %d", calls)
	}
}
