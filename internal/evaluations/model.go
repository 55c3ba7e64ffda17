package evaluations

import (
	"time"

	"dealflow-backend/internal/score"
)

// Evaluation is one scored run over a company's linked documents. Rows are
// append-only: re-evaluating a company inserts a new one.
type Evaluation struct {
	ID            string
	CompanyID     string
	Scores        score.Scores
	Total         int
	Summary       string
	HeuristicOnly bool
	CreatedAt     time.Time
}
