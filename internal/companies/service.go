package companies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/shared/telemetry"
)

const maxNameLength = 200

// DocumentSource is the slice of the documents repo the linking flow needs.
type DocumentSource interface {
	GetByID(ctx context.Context, documentId string) (documents.Document, error)
}

// Service contains business logic for companies.
type Service struct {
	Repo CompaniesRepo
	Docs DocumentSource
}

// Create records a new company for the user.
func (s *Service) Create(ctx context.Context, userId, name string) (Company, error) {
	name = strings.TrimSpace(name)
	if userId == "" || name == "" {
		return Company{}, ErrInvalidInput
	}
	if len(name) > maxNameLength {
		return Company{}, fmt.Errorf("%w: name too long", ErrInvalidInput)
	}

	company := Company{
		ID:        uuid.NewString(),
		UserID:    userId,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, company); err != nil {
		return Company{}, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}

// Get returns a company owned by the user.
func (s *Service) Get(ctx context.Context, userId, companyId string) (Company, error) {
	if userId == "" || companyId == "" {
		return Company{}, ErrInvalidInput
	}
	company, err := s.Repo.GetByID(ctx, companyId)
	if err != nil {
		return Company{}, err
	}
	if company.UserID != userId {
		return Company{}, ErrNotFound
	}
	return company, nil
}

// List returns a user's companies, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Company, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// Link attaches a document to the company under the given role. Both the
// company and the document must belong to the caller; a document owned by
// anyone else reads as not found.
func (s *Service) Link(ctx context.Context, userId, companyId, documentId, role string) (Company, error) {
	if documentId == "" {
		return Company{}, fmt.Errorf("%w: document id required", ErrInvalidInput)
	}
	if role != RoleApplication && role != RolePitchDeck {
		return Company{}, fmt.Errorf("%w: unknown document role %q", ErrInvalidInput, role)
	}

	company, err := s.Get(ctx, userId, companyId)
	if err != nil {
		return Company{}, err
	}

	doc, err := s.Docs.GetByID(ctx, documentId)
	if err != nil {
		return Company{}, fmt.Errorf("%w: document %s", ErrNotFound, documentId)
	}
	if doc.UserID != company.UserID {
		return Company{}, fmt.Errorf("%w: document %s", ErrNotFound, documentId)
	}

	if err := s.Repo.SetDocument(ctx, company.ID, role, doc.ID); err != nil {
		return Company{}, fmt.Errorf("link document: %w", err)
	}

	telemetry.Info("companies.document_linked", map[string]any{
		"company_id":  company.ID,
		"document_id": doc.ID,
		"role":        role,
	})
	return s.Get(ctx, userId, companyId)
}
