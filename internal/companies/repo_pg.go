package companies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements CompaniesRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new company.
func (r *PGRepo) Create(ctx context.Context, company Company) error {
	const query = `
INSERT INTO companies (
    id,
    user_id,
    name,
    application_doc_id,
    pitch_deck_doc_id,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		company.ID,
		company.UserID,
		company.Name,
		nullable(company.ApplicationDocID),
		nullable(company.PitchDeckDocID),
		company.CreatedAt,
	)
	return err
}

// GetByID returns a company by id.
func (r *PGRepo) GetByID(ctx context.Context, companyId string) (Company, error) {
	const query = `
SELECT id, user_id, name, application_doc_id, pitch_deck_doc_id, created_at
FROM companies
WHERE id = $1`

	var company Company
	var applicationDocID sql.NullString
	var pitchDeckDocID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, companyId).Scan(
		&company.ID,
		&company.UserID,
		&company.Name,
		&applicationDocID,
		&pitchDeckDocID,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	if applicationDocID.Valid {
		company.ApplicationDocID = applicationDocID.String
	}
	if pitchDeckDocID.Valid {
		company.PitchDeckDocID = pitchDeckDocID.String
	}
	return company, nil
}

// ListByUser returns a user's companies, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Company, error) {
	const query = `
SELECT id, user_id, name, application_doc_id, pitch_deck_doc_id, created_at
FROM companies
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]Company, 0)
	for rows.Next() {
		var company Company
		var applicationDocID sql.NullString
		var pitchDeckDocID sql.NullString
		if err := rows.Scan(
			&company.ID,
			&company.UserID,
			&company.Name,
			&applicationDocID,
			&pitchDeckDocID,
			&company.CreatedAt,
		); err != nil {
			return nil, err
		}
		if applicationDocID.Valid {
			company.ApplicationDocID = applicationDocID.String
		}
		if pitchDeckDocID.Valid {
			company.PitchDeckDocID = pitchDeckDocID.String
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// SetDocument records the document reference for the given role.
func (r *PGRepo) SetDocument(ctx context.Context, companyId, role, documentId string) error {
	var column string
	switch role {
	case RoleApplication:
		column = "application_doc_id"
	case RolePitchDeck:
		column = "pitch_deck_doc_id"
	default:
		return fmt.Errorf("%w: unknown document role %q", ErrInvalidInput, role)
	}

	// column is one of two fixed identifiers, never caller input.
	query := fmt.Sprintf(`UPDATE companies SET %s = $1 WHERE id = $2`, column)
	res, err := r.DB.ExecContext(ctx, query, documentId, companyId)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
