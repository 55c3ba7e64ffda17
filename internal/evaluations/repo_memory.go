package evaluations

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of EvaluationsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Evaluation // evaluationId -> evaluation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Evaluation),
	}
}

// Create stores a new evaluation.
func (r *MemoryRepo) Create(ctx context.Context, ev Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[ev.ID] = ev
	return nil
}

// GetByID returns an evaluation by id.
func (r *MemoryRepo) GetByID(ctx context.Context, evaluationId string) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.data[evaluationId]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return ev, nil
}

// ListByCompany returns a company's evaluations, newest first.
func (r *MemoryRepo) ListByCompany(ctx context.Context, companyId string, limit, offset int) ([]Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	evaluations := make([]Evaluation, 0)
	for _, ev := range r.data {
		if ev.CompanyID == companyId {
			evaluations = append(evaluations, ev)
		}
	}
	sort.Slice(evaluations, func(i, j int) bool {
		if evaluations[i].CreatedAt.Equal(evaluations[j].CreatedAt) {
			return evaluations[i].ID > evaluations[j].ID
		}
		return evaluations[i].CreatedAt.After(evaluations[j].CreatedAt)
	})

	if offset >= len(evaluations) {
		return []Evaluation{}, nil
	}
	evaluations = evaluations[offset:]
	if limit > 0 && limit < len(evaluations) {
		evaluations = evaluations[:limit]
	}
	return evaluations, nil
}
