package companies

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of CompaniesRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Company // companyId -> company
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Company),
	}
}

// Create stores a new company.
func (r *MemoryRepo) Create(ctx context.Context, company Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[company.ID] = company
	return nil
}

// GetByID returns a company by id.
func (r *MemoryRepo) GetByID(ctx context.Context, companyId string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.data[companyId]
	if !ok {
		return Company{}, ErrNotFound
	}
	return company, nil
}

// ListByUser returns a user's companies, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	companies := make([]Company, 0)
	for _, company := range r.data {
		if company.UserID == userId {
			companies = append(companies, company)
		}
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].CreatedAt.Equal(companies[j].CreatedAt) {
			return companies[i].ID > companies[j].ID
		}
		return companies[i].CreatedAt.After(companies[j].CreatedAt)
	})

	if offset >= len(companies) {
		return []Company{}, nil
	}
	companies = companies[offset:]
	if limit > 0 && limit < len(companies) {
		companies = companies[:limit]
	}
	return companies, nil
}

// SetDocument records the document reference for the given role.
func (r *MemoryRepo) SetDocument(ctx context.Context, companyId, role, documentId string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.data[companyId]
	if !ok {
		return ErrNotFound
	}
	switch role {
	case RoleApplication:
		company.ApplicationDocID = documentId
	case RolePitchDeck:
		company.PitchDeckDocID = documentId
	default:
		return fmt.Errorf("%w: unknown document role %q", ErrInvalidInput, role)
	}
	r.data[companyId] = company
	return nil
}
