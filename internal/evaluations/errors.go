package evaluations

import "errors"

var (
	ErrNotFound     = errors.New("evaluation not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrScoringIncomplete means the company's documents are not ready to
	// score: a reference is missing, or a referenced document has not
	// finished processing.
	ErrScoringIncomplete = errors.New("company documents not ready for scoring")
)
