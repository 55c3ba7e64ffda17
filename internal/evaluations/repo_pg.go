package evaluations

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

// PGRepo implements EvaluationsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var evaluationColumns = []string{
	"id",
	"company_id",
	"business_idea",
	"market",
	"business_plan",
	"team",
	"financing",
	"pitch_deck",
	"total",
	"summary",
	"heuristic_only",
	"created_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Create inserts a new evaluation row.
func (r *PGRepo) Create(ctx context.Context, ev Evaluation) error {
	const query = `
INSERT INTO evaluations (
    id,
    company_id,
    business_idea,
    market,
    business_plan,
    team,
    financing,
    pitch_deck,
    total,
    summary,
    heuristic_only,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		ev.ID,
		ev.CompanyID,
		ev.Scores.BusinessIdea,
		ev.Scores.Market,
		ev.Scores.BusinessPlan,
		ev.Scores.Team,
		ev.Scores.Financing,
		ev.Scores.PitchDeck,
		ev.Total,
		ev.Summary,
		ev.HeuristicOnly,
		ev.CreatedAt,
	)
	return err
}

// GetByID returns an evaluation by id.
func (r *PGRepo) GetByID(ctx context.Context, evaluationId string) (Evaluation, error) {
	const query = `
SELECT id, company_id, business_idea, market, business_plan, team, financing, pitch_deck, total, summary, heuristic_only, created_at
FROM evaluations
WHERE id = $1`

	ev, err := scanEvaluation(r.DB.QueryRowContext(ctx, query, evaluationId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, ErrNotFound
		}
		return Evaluation{}, err
	}
	return ev, nil
}

// ListByCompany returns a company's evaluations, newest first.
func (r *PGRepo) ListByCompany(ctx context.Context, companyId string, limit, offset int) ([]Evaluation, error) {
	builder := psql.
		Select(evaluationColumns...).
		From("evaluations").
		Where(sq.Eq{"company_id": companyId}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evaluations := make([]Evaluation, 0)
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, ev)
	}
	return evaluations, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var ev Evaluation
	err := row.Scan(
		&ev.ID,
		&ev.CompanyID,
		&ev.Scores.BusinessIdea,
		&ev.Scores.Market,
		&ev.Scores.BusinessPlan,
		&ev.Scores.Team,
		&ev.Scores.Financing,
		&ev.Scores.PitchDeck,
		&ev.Total,
		&ev.Summary,
		&ev.HeuristicOnly,
		&ev.CreatedAt,
	)
	return ev, err
}
