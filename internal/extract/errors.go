package extract

import "errors"

var (
	// ErrUnsupportedFormat means the declared format is not one the
	// extractor handles. Fatal; no retry is useful.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrCorruptDocument means the payload claims a supported format but is
	// structurally unreadable. Fatal and distinct from unsupported.
	ErrCorruptDocument = errors.New("corrupt document")
)
