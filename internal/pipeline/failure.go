package pipeline

import (
	"errors"
	"strings"

	"dealflow-backend/internal/extract"
	"dealflow-backend/internal/llm"
)

// errStorage marks object-store failures so they retry and land on the
// storage_error failure code instead of internal_error.
var errStorage = errors.New("storage failure")

const maxErrorChars = 300

// classifyFailure maps a stage error to the short code persisted on failed
// documents and decides whether the stage budget should retry it.
// Local-backend unavailability is checked before the generic kinds: the
// router wraps the underlying backend error, and the more specific code is
// the one operators grep for.
func classifyFailure(err error) (code string, retryable bool) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "unsupported_format", false
	case errors.Is(err, extract.ErrCorruptDocument):
		return "corrupt_document", false
	case errors.Is(err, llm.ErrLocalBackendUnavailable):
		return "local_backend_unavailable", true
	case errors.Is(err, errStorage):
		return "storage_error", true
	}
	if kind, ok := llm.KindOf(err); ok {
		switch kind {
		case llm.KindTimeout:
			return "backend_timeout", true
		case llm.KindRateLimited:
			return "backend_rate_limited", true
		case llm.KindUnavailable:
			return "backend_unavailable", true
		case llm.KindMalformed:
			return "backend_malformed", true
		}
	}
	return "internal_error", false
}

func retryableFailure(err error) bool {
	_, retryable := classifyFailure(err)
	return retryable
}

// errorText flattens an error for logging: whitespace collapsed, length
// capped, no document content.
func errorText(err error) string {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if len(msg) > maxErrorChars {
		msg = msg[:maxErrorChars]
	}
	return msg
}
