package usage

import (
	"context"
	"database/sql"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Add(ctx context.Context, userID, backend, day string, delta Delta) error {
	const query = `
INSERT INTO model_usage (user_id, backend, day, calls, failures, prompt_chars, completion_chars)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id, backend, day) DO UPDATE SET
    calls = model_usage.calls + EXCLUDED.calls,
    failures = model_usage.failures + EXCLUDED.failures,
    prompt_chars = model_usage.prompt_chars + EXCLUDED.prompt_chars,
    completion_chars = model_usage.completion_chars + EXCLUDED.completion_chars`

	_, err := s.DB.ExecContext(ctx, query,
		userID, backend, day,
		delta.Calls, delta.Failures, delta.PromptChars, delta.CompletionChars,
	)
	return err
}

func (s *pgStore) ListByUser(ctx context.Context, userID string, days int) ([]Record, error) {
	const query = `
SELECT user_id, backend, day, calls, failures, prompt_chars, completion_chars
FROM model_usage
WHERE user_id = $1 AND day >= to_char(now() AT TIME ZONE 'utc' - make_interval(days => $2), 'YYYY-MM-DD')
ORDER BY day DESC, backend ASC`

	rows, err := s.DB.QueryContext(ctx, query, userID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.UserID,
			&rec.Backend,
			&rec.Day,
			&rec.Calls,
			&rec.Failures,
			&rec.PromptChars,
			&rec.CompletionChars,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ store = (*pgStore)(nil)
