package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, file_name, mime_type, size_bytes, format, storage_key, text_key, sensitivity, sensitivity_override, summary, summary_source, status, failure_code, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    format,
    storage_key,
    text_key,
    sensitivity,
    sensitivity_override,
    summary,
    summary_source,
    status,
    failure_code,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		doc.Format,
		doc.StorageKey,
		nullable(doc.TextKey),
		nullable(doc.Sensitivity),
		nullable(doc.SensitivityOverride),
		nullable(doc.Summary),
		nullable(doc.SummarySource),
		doc.Status,
		nullable(doc.FailureCode),
		doc.CreatedAt,
	)
	return err
}

// GetByID returns a document by id.
func (r *PGRepo) GetByID(ctx context.Context, documentId string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser returns a user's documents, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Transition moves status from -> to.
func (r *PGRepo) Transition(ctx context.Context, documentId, from, to string) (bool, error) {
	const query = `
UPDATE documents
SET status = $1, updated_at = now()
WHERE id = $2 AND status = $3`
	return r.exec(ctx, query, to, documentId, from)
}

// SetExtracted records the text key and moves extracting -> extracted.
func (r *PGRepo) SetExtracted(ctx context.Context, documentId, textKey string) (bool, error) {
	const query = `
UPDATE documents
SET status = 'extracted', text_key = $1, updated_at = now()
WHERE id = $2 AND status = 'extracting'`
	return r.exec(ctx, query, textKey, documentId)
}

// SetSensitivity records the label and moves classifying -> classified.
func (r *PGRepo) SetSensitivity(ctx context.Context, documentId, label string) (bool, error) {
	const query = `
UPDATE documents
SET status = 'classified', sensitivity = $1, updated_at = now()
WHERE id = $2 AND status = 'classifying'`
	return r.exec(ctx, query, label, documentId)
}

// SetSummary records the summary and moves summarizing -> completed.
func (r *PGRepo) SetSummary(ctx context.Context, documentId, summary, source string) (bool, error) {
	const query = `
UPDATE documents
SET status = 'completed', summary = $1, summary_source = $2, failure_code = NULL, updated_at = now()
WHERE id = $3 AND status = 'summarizing'`
	return r.exec(ctx, query, summary, source, documentId)
}

// MarkFailed moves any non-terminal status to failed.
func (r *PGRepo) MarkFailed(ctx context.Context, documentId, failureCode string) (bool, error) {
	const query = `
UPDATE documents
SET status = 'failed', failure_code = $1, updated_at = now()
WHERE id = $2 AND status NOT IN ('completed', 'failed', 'cancelled')`
	return r.exec(ctx, query, failureCode, documentId)
}

// MarkCancelled moves any non-terminal status to cancelled.
func (r *PGRepo) MarkCancelled(ctx context.Context, documentId string) (bool, error) {
	const query = `
UPDATE documents
SET status = 'cancelled', updated_at = now()
WHERE id = $1 AND status NOT IN ('completed', 'failed', 'cancelled')`
	return r.exec(ctx, query, documentId)
}

// SetOverride sets or clears the manual sensitivity override.
func (r *PGRepo) SetOverride(ctx context.Context, documentId, label string) error {
	const query = `
UPDATE documents
SET sensitivity_override = $1, updated_at = now()
WHERE id = $2`
	ok, err := r.exec(ctx, query, nullable(label), documentId)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document.
func (r *PGRepo) Delete(ctx context.Context, documentId string) error {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, documentId)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnfinishedIDs returns ids of non-terminal documents, oldest first.
func (r *PGRepo) ListUnfinishedIDs(ctx context.Context) ([]string, error) {
	const query = `
SELECT id
FROM documents
WHERE status NOT IN ('completed', 'failed', 'cancelled')
ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var textKey sql.NullString
	var sensitivity sql.NullString
	var override sql.NullString
	var summary sql.NullString
	var summarySource sql.NullString
	var failureCode sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.Format,
		&doc.StorageKey,
		&textKey,
		&sensitivity,
		&override,
		&summary,
		&summarySource,
		&doc.Status,
		&failureCode,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if textKey.Valid {
		doc.TextKey = textKey.String
	}
	if sensitivity.Valid {
		doc.Sensitivity = sensitivity.String
	}
	if override.Valid {
		doc.SensitivityOverride = override.String
	}
	if summary.Valid {
		doc.Summary = summary.String
	}
	if summarySource.Valid {
		doc.SummarySource = summarySource.String
	}
	if failureCode.Valid {
		doc.FailureCode = failureCode.String
	}
	return doc, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
