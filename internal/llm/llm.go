package llm

import (
	"context"
	"errors"
	"fmt"
)

// Backend is the single capability a model backend exposes. Implementations
// must be safe for concurrent use; the handles are shared read-only
// configuration.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ErrorKind classifies backend failures for the retry policy.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindRateLimited ErrorKind = "rate_limited"
	KindUnavailable ErrorKind = "unavailable"
	KindMalformed   ErrorKind = "malformed"
)

// BackendError wraps a failed backend call with its classification.
type BackendError struct {
	Backend string
	Kind    ErrorKind
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s backend: %s", e.Backend, e.Kind)
	}
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// KindOf extracts the error kind from a backend error chain.
func KindOf(err error) (ErrorKind, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}

// ErrLocalBackendUnavailable means the local backend was required (classified
// content) but could not serve. It never triggers a remote fallback.
var ErrLocalBackendUnavailable = errors.New("local backend unavailable")
