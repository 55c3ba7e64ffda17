package usage

import (
	"context"
	"time"

	"dealflow-backend/internal/shared/telemetry"
)

const dayFormat = "2006-01-02"

type store interface {
	Add(ctx context.Context, userID, backend, day string, delta Delta) error
	ListByUser(ctx context.Context, userID string, days int) ([]Record, error)
}

// Service manages the model-call ledger via an underlying store.
type Service struct {
	store store
	now   func() time.Time
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore(), now: time.Now}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore, now: time.Now}
}

// RecordCall books one backend call into the caller's ledger for today.
// Writes run on a background context so a cancelled job still gets counted,
// and failures only log: accounting never breaks the pipeline.
func (s *Service) RecordCall(userID, backend string, promptChars, completionChars int, failed bool) {
	if s == nil || userID == "" || backend == "" {
		return
	}
	delta := Delta{
		Calls:           1,
		PromptChars:     int64(promptChars),
		CompletionChars: int64(completionChars),
	}
	if failed {
		delta.Failures = 1
	}
	day := s.now().UTC().Format(dayFormat)
	if err := s.store.Add(context.Background(), userID, backend, day, delta); err != nil {
		telemetry.Error("usage.record_failed", map[string]any{
			"user_id": userID,
			"backend": backend,
			"error":   err.Error(),
		})
	}
}

// ListByUser returns the caller's ledger rows for the trailing window,
// newest day first.
func (s *Service) ListByUser(ctx context.Context, userID string, days int) ([]Record, error) {
	if days <= 0 {
		days = 30
	}
	return s.store.ListByUser(ctx, userID, days)
}
