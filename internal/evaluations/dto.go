package evaluations

import (
	"time"

	"dealflow-backend/internal/score"
)

// EvaluationResponse is the outward-facing representation of an evaluation.
// Score keys stay in category-identifier form so clients can join them
// against the category list.
type EvaluationResponse struct {
	EvaluationID  string       `json:"evaluationId"`
	CompanyID     string       `json:"companyId"`
	Scores        score.Scores `json:"scores"`
	Total         int          `json:"total"`
	Summary       string       `json:"summary"`
	HeuristicOnly bool         `json:"heuristicOnly"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func toResponse(ev Evaluation) EvaluationResponse {
	return EvaluationResponse{
		EvaluationID:  ev.ID,
		CompanyID:     ev.CompanyID,
		Scores:        ev.Scores,
		Total:         ev.Total,
		Summary:       ev.Summary,
		HeuristicOnly: ev.HeuristicOnly,
		CreatedAt:     ev.CreatedAt,
	}
}
