package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"dealflow-backend/internal/scheduler"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saves   int
	removed []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Save(ctx context.Context, userId, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	key := fmt.Sprintf("objects/%s/%d_%s", userId, f.saves, fileName)
	f.objects[key] = data
	return key, int64(len(data)), http.DetectContentType(data), nil
}

func (f *fakeStore) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[storageKey] = data
	return int64(len(data)), nil
}

func (f *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Remove(ctx context.Context, storageKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, storageKey)
	f.removed = append(f.removed, storageKey)
	return nil
}

func (f *fakeStore) removedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

type fakeQueue struct {
	mu         sync.Mutex
	jobs       []scheduler.Job
	cancels    []string
	enqueueErr error
}

func (f *fakeQueue) Enqueue(job scheduler.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Cancel(documentId string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, documentId)
	return true
}

func newTestService() (*Service, *fakeStore, *fakeQueue) {
	store := newFakeStore()
	queue := &fakeQueue{}
	svc := &Service{
		Store: store,
		Repo:  NewMemoryRepo(),
		Jobs:  queue,
	}
	return svc, store, queue
}

const pdfPayload = "%PDF-1.4\nfake business plan body"

func TestSubmitCreatesPendingDocumentAndEnqueues(t *testing.T) {
	svc, store, queue := newTestService()

	doc, err := svc.Submit(context.Background(), "user-1", "plan.pdf", "application/pdf", int64(len(pdfPayload)), strings.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected a document id")
	}
	if doc.Status != StatusPending {
		t.Fatalf("status = %q, want %q", doc.Status, StatusPending)
	}
	if doc.Format != "pdf" {
		t.Fatalf("format = %q, want pdf", doc.Format)
	}
	if doc.SizeBytes != int64(len(pdfPayload)) {
		t.Fatalf("size = %d, want %d", doc.SizeBytes, len(pdfPayload))
	}

	stored, err := svc.Repo.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.StorageKey == "" {
		t.Fatal("expected a storage key on the stored row")
	}
	if _, err := store.Open(context.Background(), stored.StorageKey); err != nil {
		t.Fatalf("stored object missing: %v", err)
	}

	if len(queue.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(queue.jobs))
	}
	if queue.jobs[0].DocumentID != doc.ID {
		t.Fatalf("job document id = %q, want %q", queue.jobs[0].DocumentID, doc.ID)
	}
}

func TestSubmitRejectsOversizeBeforeReading(t *testing.T) {
	svc, store, _ := newTestService()
	svc.MaxUploadBytes = 100

	_, err := svc.Submit(context.Background(), "user-1", "plan.pdf", "application/pdf", 101, strings.NewReader(pdfPayload))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if store.saves != 0 {
		t.Fatalf("store.Save called %d times, want 0", store.saves)
	}
}

func TestSubmitRejectsOversizeBody(t *testing.T) {
	svc, store, _ := newTestService()
	svc.MaxUploadBytes = 20

	// Declared size fits; the actual body does not.
	body := pdfPayload + strings.Repeat("x", 100)
	_, err := svc.Submit(context.Background(), "user-1", "plan.pdf", "application/pdf", 10, strings.NewReader(body))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if len(store.removedKeys()) != 1 {
		t.Fatalf("expected the stored object to be rolled back, removed=%v", store.removedKeys())
	}
}

func TestSubmitRejectsUnsupportedType(t *testing.T) {
	svc, store, queue := newTestService()

	_, err := svc.Submit(context.Background(), "user-1", "notes.txt", "text/plain", 10, strings.NewReader("plain text"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(store.removedKeys()) != 1 {
		t.Fatal("expected the stored object to be rolled back")
	}
	if len(queue.jobs) != 0 {
		t.Fatal("nothing should be enqueued for a rejected upload")
	}
}

func TestSubmitRollsBackWhenSchedulerSaturated(t *testing.T) {
	svc, store, queue := newTestService()
	queue.enqueueErr = scheduler.ErrSaturated

	_, err := svc.Submit(context.Background(), "user-1", "plan.pdf", "application/pdf", int64(len(pdfPayload)), strings.NewReader(pdfPayload))
	if !errors.Is(err, scheduler.ErrSaturated) {
		t.Fatalf("err = %v, want ErrSaturated", err)
	}

	docs, err := svc.Repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no rows after rollback, got %d", len(docs))
	}
	if len(store.removedKeys()) != 1 {
		t.Fatal("expected the stored object to be rolled back")
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _, _ := newTestService()

	doc, err := svc.Submit(context.Background(), "user-1", "plan.pdf", "application/pdf", int64(len(pdfPayload)), strings.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.Get(context.Background(), "user-2", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user Get err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
}

func TestSetOverride(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Submit(ctx, "user-1", "plan.pdf", "application/pdf", int64(len(pdfPayload)), strings.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	updated, err := svc.SetOverride(ctx, "user-1", doc.ID, "Classified")
	if err != nil {
		t.Fatalf("SetOverride: %v", err)
	}
	if updated.SensitivityOverride != "classified" {
		t.Fatalf("override = %q, want classified", updated.SensitivityOverride)
	}
	if updated.EffectiveSensitivity() != "classified" {
		t.Fatalf("effective = %q, want classified", updated.EffectiveSensitivity())
	}

	cleared, err := svc.SetOverride(ctx, "user-1", doc.ID, "")
	if err != nil {
		t.Fatalf("clear override: %v", err)
	}
	if cleared.SensitivityOverride != "" {
		t.Fatalf("override = %q, want empty after clearing", cleared.SensitivityOverride)
	}

	if _, err := svc.SetOverride(ctx, "user-1", doc.ID, "secret"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad label err = %v, want ErrInvalidInput", err)
	}
}

func TestSetOverrideRefusedWhileProcessing(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.Submit(ctx, "user-1", "plan.pdf", "application/pdf", int64(len(pdfPayload)), strings.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ok, err := svc.Repo.Transition(ctx, doc.ID, StatusPending, StatusExtracting); err != nil || !ok {
		t.Fatalf("Transition: ok=%v err=%v", ok, err)
	}

	if _, err := svc.SetOverride(ctx, "user-1", doc.ID, "classified"); !errors.Is(err, ErrProcessing) {
		t.Fatalf("err = %v, want ErrProcessing", err)
	}
}

func TestDeleteCancelsAndRemovesEverything(t *testing.T) {
	svc, store, queue := newTestService()
	ctx := context.Background()

	doc, err := svc.Submit(ctx, "user-1", "plan.pdf", "application/pdf", int64(len(pdfPayload)), strings.NewReader(pdfPayload))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ok, _ := svc.Repo.Transition(ctx, doc.ID, StatusPending, StatusExtracting); !ok {
		t.Fatal("Transition to extracting failed")
	}
	if ok, _ := svc.Repo.SetExtracted(ctx, doc.ID, "texts/"+doc.ID+".txt"); !ok {
		t.Fatal("SetExtracted failed")
	}

	if err := svc.Delete(ctx, "user-1", doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Repo.GetByID(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("row still present after delete: %v", err)
	}
	if len(queue.cancels) != 1 || queue.cancels[0] != doc.ID {
		t.Fatalf("cancels = %v, want [%s]", queue.cancels, doc.ID)
	}

	removed := store.removedKeys()
	if len(removed) != 2 {
		t.Fatalf("removed %d objects, want original + text: %v", len(removed), removed)
	}
}

func TestTextReadsExtractedContent(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	if _, err := store.SaveWithKey(ctx, "texts/doc-1.txt", "text/plain; charset=utf-8", strings.NewReader("extracted words")); err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}

	got, err := svc.Text(ctx, Document{ID: "doc-1", TextKey: "texts/doc-1.txt"})
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "extracted words" {
		t.Fatalf("text = %q", got)
	}

	if _, err := svc.Text(ctx, Document{ID: "doc-2"}); err == nil {
		t.Fatal("expected error for document without text key")
	}
}
