package usage

import (
	"context"

	"dealflow-backend/internal/llm"
)

// Instrument wraps a backend so every Complete call lands in the user's
// ledger. A nil service returns the backend unchanged, which keeps call
// sites free of nil checks.
func (s *Service) Instrument(userID string, backend llm.Backend) llm.Backend {
	if s == nil || backend == nil {
		return backend
	}
	return &meteredBackend{svc: s, userID: userID, backend: backend}
}

type meteredBackend struct {
	svc     *Service
	userID  string
	backend llm.Backend
}

func (m *meteredBackend) Name() string {
	return m.backend.Name()
}

func (m *meteredBackend) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	out, err := m.backend.Complete(ctx, prompt, maxTokens)
	m.svc.RecordCall(m.userID, m.backend.Name(), len(prompt), len(out), err != nil)
	return out, err
}
