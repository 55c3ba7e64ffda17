package companies

import "context"

// CompaniesRepo defines persistence operations for companies.
type CompaniesRepo interface {
	Create(ctx context.Context, company Company) error
	GetByID(ctx context.Context, companyId string) (Company, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Company, error)
	// SetDocument records the document reference for the given role.
	SetDocument(ctx context.Context, companyId, role, documentId string) error
}
