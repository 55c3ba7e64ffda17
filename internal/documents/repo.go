package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
//
// The stage mutators (Transition, SetExtracted, SetSensitivity, SetSummary,
// MarkFailed, MarkCancelled) are guarded by the current status and report
// whether the write applied. A false return with a nil error means the
// document was missing or already past the expected status; callers treat
// that as "someone else owns this document now" and move on, which is what
// makes retried stage transitions idempotent.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentId string) (Document, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error)

	// Transition moves status from -> to with no other column changes.
	Transition(ctx context.Context, documentId, from, to string) (bool, error)
	// SetExtracted records the extracted-text object key and moves
	// extracting -> extracted.
	SetExtracted(ctx context.Context, documentId, textKey string) (bool, error)
	// SetSensitivity records the classifier label and moves
	// classifying -> classified.
	SetSensitivity(ctx context.Context, documentId, label string) (bool, error)
	// SetSummary records the summary and its source and moves
	// summarizing -> completed.
	SetSummary(ctx context.Context, documentId, summary, source string) (bool, error)
	// MarkFailed moves any non-terminal status to failed with a failure code.
	MarkFailed(ctx context.Context, documentId, failureCode string) (bool, error)
	// MarkCancelled moves any non-terminal status to cancelled.
	MarkCancelled(ctx context.Context, documentId string) (bool, error)

	// SetOverride sets or clears (empty label) the manual sensitivity
	// override.
	SetOverride(ctx context.Context, documentId, label string) error
	Delete(ctx context.Context, documentId string) error

	// ListUnfinishedIDs returns ids of documents in a non-terminal status,
	// oldest first. The worker re-enqueues these at boot.
	ListUnfinishedIDs(ctx context.Context) ([]string, error)
}
