package companies

import "errors"

var (
	// ErrNotFound is returned when a company does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("company not found")
	// ErrInvalidInput is returned for malformed create or link requests.
	ErrInvalidInput = errors.New("invalid input")
)
