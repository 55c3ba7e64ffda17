package evaluations

import "context"

// EvaluationsRepo defines persistence for evaluations. Create never
// replaces an existing row; history stays intact across re-runs.
type EvaluationsRepo interface {
	Create(ctx context.Context, ev Evaluation) error
	GetByID(ctx context.Context, evaluationId string) (Evaluation, error)
	ListByCompany(ctx context.Context, companyId string, limit, offset int) ([]Evaluation, error)
}
