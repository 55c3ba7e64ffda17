package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo. It backs tests
// and the dev profile when no database is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // documentId -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by id.
func (r *MemoryRepo) GetByID(ctx context.Context, documentId string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentId]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByUser returns a user's documents, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]Document, 0)
	for _, doc := range r.data {
		if doc.UserID == userId {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	docs = docs[offset:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs, nil
}

// Transition moves status from -> to.
func (r *MemoryRepo) Transition(ctx context.Context, documentId, from, to string) (bool, error) {
	return r.update(ctx, documentId, from, func(doc *Document) {
		doc.Status = to
	})
}

// SetExtracted records the text key and moves extracting -> extracted.
func (r *MemoryRepo) SetExtracted(ctx context.Context, documentId, textKey string) (bool, error) {
	return r.update(ctx, documentId, StatusExtracting, func(doc *Document) {
		doc.Status = StatusExtracted
		doc.TextKey = textKey
	})
}

// SetSensitivity records the label and moves classifying -> classified.
func (r *MemoryRepo) SetSensitivity(ctx context.Context, documentId, label string) (bool, error) {
	return r.update(ctx, documentId, StatusClassifying, func(doc *Document) {
		doc.Status = StatusClassified
		doc.Sensitivity = label
	})
}

// SetSummary records the summary and moves summarizing -> completed.
func (r *MemoryRepo) SetSummary(ctx context.Context, documentId, summary, source string) (bool, error) {
	return r.update(ctx, documentId, StatusSummarizing, func(doc *Document) {
		doc.Status = StatusCompleted
		doc.Summary = summary
		doc.SummarySource = source
		doc.FailureCode = ""
	})
}

// MarkFailed moves any non-terminal status to failed.
func (r *MemoryRepo) MarkFailed(ctx context.Context, documentId, failureCode string) (bool, error) {
	return r.updateIf(ctx, documentId,
		func(doc Document) bool { return !IsTerminal(doc.Status) },
		func(doc *Document) {
			doc.Status = StatusFailed
			doc.FailureCode = failureCode
		})
}

// MarkCancelled moves any non-terminal status to cancelled.
func (r *MemoryRepo) MarkCancelled(ctx context.Context, documentId string) (bool, error) {
	return r.updateIf(ctx, documentId,
		func(doc Document) bool { return !IsTerminal(doc.Status) },
		func(doc *Document) {
			doc.Status = StatusCancelled
		})
}

// SetOverride sets or clears the manual sensitivity override.
func (r *MemoryRepo) SetOverride(ctx context.Context, documentId, label string) error {
	ok, err := r.updateIf(ctx, documentId,
		func(Document) bool { return true },
		func(doc *Document) {
			doc.SensitivityOverride = label
		})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document.
func (r *MemoryRepo) Delete(ctx context.Context, documentId string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[documentId]; !ok {
		return ErrNotFound
	}
	delete(r.data, documentId)
	return nil
}

// ListUnfinishedIDs returns ids of non-terminal documents, oldest first.
func (r *MemoryRepo) ListUnfinishedIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]Document, 0)
	for _, doc := range r.data {
		if !IsTerminal(doc.Status) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

func (r *MemoryRepo) update(ctx context.Context, documentId, expectStatus string, apply func(*Document)) (bool, error) {
	return r.updateIf(ctx, documentId,
		func(doc Document) bool { return doc.Status == expectStatus },
		apply)
}

func (r *MemoryRepo) updateIf(ctx context.Context, documentId string, guard func(Document) bool, apply func(*Document)) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[documentId]
	if !ok || !guard(doc) {
		return false, nil
	}
	apply(&doc)
	doc.UpdatedAt = time.Now().UTC()
	r.data[documentId] = doc
	return true, nil
}
