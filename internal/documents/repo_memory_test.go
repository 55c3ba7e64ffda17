package documents

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedDoc(t *testing.T, repo *MemoryRepo, id, userId, status string, createdAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), Document{
		ID:         id,
		UserID:     userId,
		FileName:   id + ".pdf",
		Format:     "pdf",
		StorageKey: "objects/" + id,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", id, err)
	}
}

func TestTransitionAppliesExactlyOnce(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	seedDoc(t, repo, "doc-1", "user-1", StatusPending, time.Now().UTC())

	ok, err := repo.Transition(ctx, "doc-1", StatusPending, StatusExtracting)
	if err != nil || !ok {
		t.Fatalf("first transition: ok=%v err=%v", ok, err)
	}
	// The same transition retried is a no-op.
	ok, err = repo.Transition(ctx, "doc-1", StatusPending, StatusExtracting)
	if err != nil {
		t.Fatalf("retried transition: %v", err)
	}
	if ok {
		t.Fatal("retried transition reported applied")
	}

	doc, err := repo.GetByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Status != StatusExtracting {
		t.Fatalf("status = %q, want %q", doc.Status, StatusExtracting)
	}
}

func TestTransitionUnknownDocument(t *testing.T) {
	repo := NewMemoryRepo()
	ok, err := repo.Transition(context.Background(), "missing", StatusPending, StatusExtracting)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if ok {
		t.Fatal("transition on a missing document reported applied")
	}
}

func TestStageWritersGuardOnStatus(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	seedDoc(t, repo, "doc-1", "user-1", StatusPending, time.Now().UTC())

	// Wrong source status: nothing applies.
	if ok, _ := repo.SetExtracted(ctx, "doc-1", "texts/doc-1.txt"); ok {
		t.Fatal("SetExtracted applied from pending")
	}

	mustTransition(t, repo, "doc-1", StatusPending, StatusExtracting)
	if ok, _ := repo.SetExtracted(ctx, "doc-1", "texts/doc-1.txt"); !ok {
		t.Fatal("SetExtracted did not apply from extracting")
	}

	mustTransition(t, repo, "doc-1", StatusExtracted, StatusClassifying)
	if ok, _ := repo.SetSensitivity(ctx, "doc-1", "unclassified"); !ok {
		t.Fatal("SetSensitivity did not apply from classifying")
	}

	mustTransition(t, repo, "doc-1", StatusClassified, StatusSummarizing)
	if ok, _ := repo.SetSummary(ctx, "doc-1", "summary text", "model"); !ok {
		t.Fatal("SetSummary did not apply from summarizing")
	}

	doc, err := repo.GetByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", doc.Status)
	}
	if doc.TextKey != "texts/doc-1.txt" || doc.Sensitivity != "unclassified" || doc.Summary != "summary text" || doc.SummarySource != "model" {
		t.Fatalf("stage fields not recorded: %+v", doc)
	}
}

func mustTransition(t *testing.T, repo *MemoryRepo, id, from, to string) {
	t.Helper()
	ok, err := repo.Transition(context.Background(), id, from, to)
	if err != nil || !ok {
		t.Fatalf("Transition %s -> %s: ok=%v err=%v", from, to, ok, err)
	}
}

func TestMarkFailedOnlyFromNonTerminal(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	seedDoc(t, repo, "doc-1", "user-1", StatusExtracting, time.Now().UTC())

	ok, err := repo.MarkFailed(ctx, "doc-1", "backend_timeout")
	if err != nil || !ok {
		t.Fatalf("MarkFailed: ok=%v err=%v", ok, err)
	}
	doc, _ := repo.GetByID(ctx, "doc-1")
	if doc.Status != StatusFailed || doc.FailureCode != "backend_timeout" {
		t.Fatalf("doc = %+v", doc)
	}

	// Terminal documents stay put.
	if ok, _ := repo.MarkFailed(ctx, "doc-1", "internal_error"); ok {
		t.Fatal("MarkFailed applied to an already failed document")
	}
	if ok, _ := repo.MarkCancelled(ctx, "doc-1"); ok {
		t.Fatal("MarkCancelled applied to a failed document")
	}
	doc, _ = repo.GetByID(ctx, "doc-1")
	if doc.FailureCode != "backend_timeout" {
		t.Fatalf("failure code overwritten: %q", doc.FailureCode)
	}
}

func TestListByUserOrderAndPaging(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedDoc(t, repo, "doc-a", "user-1", StatusCompleted, base)
	seedDoc(t, repo, "doc-b", "user-1", StatusCompleted, base.Add(1*time.Minute))
	seedDoc(t, repo, "doc-c", "user-1", StatusCompleted, base.Add(2*time.Minute))
	seedDoc(t, repo, "doc-x", "user-2", StatusCompleted, base.Add(3*time.Minute))

	docs, err := repo.ListByUser(ctx, "user-1", 2, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "doc-c" || docs[1].ID != "doc-b" {
		t.Fatalf("page 1 = %v", ids(docs))
	}

	docs, err = repo.ListByUser(ctx, "user-1", 2, 2)
	if err != nil {
		t.Fatalf("ListByUser offset: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "doc-a" {
		t.Fatalf("page 2 = %v", ids(docs))
	}

	docs, err = repo.ListByUser(ctx, "user-1", 10, 10)
	if err != nil {
		t.Fatalf("ListByUser past end: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("past-end page = %v", ids(docs))
	}
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestListUnfinishedIDs(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedDoc(t, repo, "doc-old", "user-1", StatusExtracting, base)
	seedDoc(t, repo, "doc-new", "user-1", StatusPending, base.Add(time.Hour))
	seedDoc(t, repo, "doc-done", "user-1", StatusCompleted, base.Add(2*time.Hour))
	seedDoc(t, repo, "doc-dead", "user-2", StatusFailed, base.Add(3*time.Hour))

	got, err := repo.ListUnfinishedIDs(ctx)
	if err != nil {
		t.Fatalf("ListUnfinishedIDs: %v", err)
	}
	if len(got) != 2 || got[0] != "doc-old" || got[1] != "doc-new" {
		t.Fatalf("got %v, want [doc-old doc-new]", got)
	}
}

func TestSetOverrideAndDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	seedDoc(t, repo, "doc-1", "user-1", StatusPending, time.Now().UTC())

	if err := repo.SetOverride(ctx, "doc-1", "classified"); err != nil {
		t.Fatalf("SetOverride: %v", err)
	}
	doc, _ := repo.GetByID(ctx, "doc-1")
	if doc.SensitivityOverride != "classified" {
		t.Fatalf("override = %q", doc.SensitivityOverride)
	}

	if err := repo.SetOverride(ctx, "missing", "classified"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetOverride missing err = %v", err)
	}

	if err := repo.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v", err)
	}
}
