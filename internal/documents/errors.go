package documents

import "errors"

var (
	// ErrNotFound is returned when a document does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput is returned for malformed upload or override requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTooLarge is returned when an upload exceeds the configured size cap.
	ErrTooLarge = errors.New("document too large")
	// ErrProcessing is returned when an operation requires the document to be
	// idle but a pipeline job currently owns it.
	ErrProcessing = errors.New("document is processing")
)
