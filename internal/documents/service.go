package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealflow-backend/internal/classify"
	"dealflow-backend/internal/extract"
	"dealflow-backend/internal/scheduler"
	"dealflow-backend/internal/shared/storage/object"
	"dealflow-backend/internal/shared/telemetry"
)

// Document lifecycle statuses.
const (
	StatusPending     = "pending"
	StatusExtracting  = "extracting"
	StatusExtracted   = "extracted"
	StatusClassifying = "classifying"
	StatusClassified  = "classified"
	StatusSummarizing = "summarizing"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusCancelled   = "cancelled"
)

// IsTerminal reports whether a status ends the pipeline for a document.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// DefaultMaxUploadBytes caps uploads when no explicit limit is configured.
const DefaultMaxUploadBytes = 50 << 20 // 50MB

// JobQueue is the slice of the scheduler the documents service needs:
// handing a document to the pipeline and pulling it back out.
type JobQueue interface {
	Enqueue(job scheduler.Job) error
	Cancel(documentId string) bool
}

// Service contains business logic for documents.
type Service struct {
	Store          object.ObjectStore
	Repo           DocumentsRepo
	Jobs           JobQueue
	MaxUploadBytes int64
}

// Submit stores the uploaded file, records a pending document and hands it to
// the scheduler. The declared size is checked against the cap before any
// bytes are read; scheduler saturation propagates to the caller with the
// stored object and row already rolled back.
func (s *Service) Submit(ctx context.Context, userId, fileName, declaredType string, size int64, r io.Reader) (Document, error) {
	if userId == "" || strings.TrimSpace(fileName) == "" {
		return Document{}, ErrInvalidInput
	}
	if size <= 0 {
		return Document{}, fmt.Errorf("%w: size must be positive", ErrInvalidInput)
	}
	max := s.maxUploadBytes()
	if size > max {
		return Document{}, ErrTooLarge
	}

	storageKey, written, sniffedType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}
	if written > max {
		s.removeObject(storageKey)
		return Document{}, ErrTooLarge
	}

	format := extract.DetectFormat(sniffedType, fileName, nil)
	if format == "" {
		format = extract.DetectFormat(declaredType, fileName, nil)
	}
	if format == "" {
		s.removeObject(storageKey)
		return Document{}, fmt.Errorf("%w: unsupported document type", ErrInvalidInput)
	}

	now := time.Now().UTC()
	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userId,
		FileName:   fileName,
		MimeType:   extract.MimeType(format),
		SizeBytes:  written,
		Format:     format,
		StorageKey: storageKey,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		s.removeObject(storageKey)
		return Document{}, fmt.Errorf("create document: %w", err)
	}

	job := scheduler.Job{
		DocumentID: doc.ID,
		RequestID:  telemetry.RequestIDFromContext(ctx),
	}
	if err := s.Jobs.Enqueue(job); err != nil {
		if delErr := s.Repo.Delete(context.Background(), doc.ID); delErr != nil {
			telemetry.Error("documents.rollback_failed", map[string]any{
				"document_id": doc.ID,
				"error":       delErr.Error(),
			})
		}
		s.removeObject(storageKey)
		return Document{}, fmt.Errorf("enqueue document: %w", err)
	}

	telemetry.Info("documents.submitted", map[string]any{
		"document_id": doc.ID,
		"user_id":     userId,
		"format":      format,
		"size_bytes":  written,
	})
	return doc, nil
}

// Get returns a document owned by the user.
func (s *Service) Get(ctx context.Context, userId, documentId string) (Document, error) {
	if userId == "" || documentId == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, documentId)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userId {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns a user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// SetOverride sets (label "classified"/"unclassified") or clears (empty
// label) the manual sensitivity override. The override wins over the
// classifier from the moment it is set, so changing it is refused while a
// pipeline job owns the document.
func (s *Service) SetOverride(ctx context.Context, userId, documentId, label string) (Document, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label != "" {
		if _, ok := classify.ParseLabel(label); !ok {
			return Document{}, fmt.Errorf("%w: unknown sensitivity label %q", ErrInvalidInput, label)
		}
	}

	doc, err := s.Get(ctx, userId, documentId)
	if err != nil {
		return Document{}, err
	}
	if doc.Status != StatusPending && !IsTerminal(doc.Status) {
		return Document{}, ErrProcessing
	}

	if err := s.Repo.SetOverride(ctx, doc.ID, label); err != nil {
		return Document{}, err
	}
	return s.Get(ctx, userId, documentId)
}

// Delete cancels any in-flight job for the document, removes the row and
// discards the stored objects.
func (s *Service) Delete(ctx context.Context, userId, documentId string) error {
	doc, err := s.Get(ctx, userId, documentId)
	if err != nil {
		return err
	}

	if s.Jobs != nil {
		s.Jobs.Cancel(doc.ID)
	}
	// Guarded write so a worker that is between suspension points sees a
	// terminal status and stops touching the document.
	if _, err := s.Repo.MarkCancelled(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	s.removeObject(doc.StorageKey)
	if doc.TextKey != "" {
		s.removeObject(doc.TextKey)
	}
	telemetry.Info("documents.deleted", map[string]any{
		"document_id": doc.ID,
		"user_id":     userId,
	})
	return nil
}

// Text loads the extracted text for a document from object storage.
func (s *Service) Text(ctx context.Context, doc Document) (string, error) {
	if doc.TextKey == "" {
		return "", fmt.Errorf("document %s has no extracted text", doc.ID)
	}
	rc, err := s.Store.Open(ctx, doc.TextKey)
	if err != nil {
		return "", fmt.Errorf("open extracted text: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return string(data), nil
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

// removeObject is best effort; a leaked object never blocks the API path.
func (s *Service) removeObject(storageKey string) {
	if storageKey == "" {
		return
	}
	if err := s.Store.Remove(context.Background(), storageKey); err != nil {
		telemetry.Error("documents.remove_object_failed", map[string]any{
			"storage_key": storageKey,
			"error":       err.Error(),
		})
	}
}
