package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dealflow-backend/internal/llm"
)

type scriptedBackend struct {
	prompts []string
	out     string
	err     error
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Complete(_ context.Context, prompt string, _ int) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.out, s.err
}

func TestSummarizeReturnsModelOutput(t *testing.T) {
	backend := &scriptedBackend{out: "  a tidy summary  "}
	svc := New(0, 256, 0)

	got, err := svc.Summarize(context.Background(), backend, "business plan", "the document text")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.Text != "a tidy summary" {
		t.Fatalf("unexpected summary %q", got.Text)
	}
	if got.Source != SourceModel {
		t.Fatalf("expected model source, got %s", got.Source)
	}
	if len(backend.prompts) != 1 || !strings.Contains(backend.prompts[0], "the document text") {
		t.Fatalf("prompt did not carry document text: %v", backend.prompts)
	}
}

func TestSummarizeTruncatesPromptInput(t *testing.T) {
	backend := &scriptedBackend{out: "summary"}
	svc := New(50, 256, 0)
	text := strings.Repeat("x", 500)

	if _, err := svc.Summarize(context.Background(), backend, "pitch deck", text); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if strings.Contains(backend.prompts[0], text) {
		t.Fatalf("expected prompt input to be truncated")
	}
}

func TestSummarizeDoesNotRetry(t *testing.T) {
	backend := &scriptedBackend{err: &llm.BackendError{Backend: "scripted", Kind: llm.KindTimeout, Err: errors.New("deadline")}}
	svc := New(0, 256, 0)

	_, err := svc.Summarize(context.Background(), backend, "business plan", "text")
	if kind, ok := llm.KindOf(err); !ok || kind != llm.KindTimeout {
		t.Fatalf("expected timeout kind to pass through, got %v", err)
	}
	if len(backend.prompts) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(backend.prompts))
	}
}

func TestSummarizeEmptyModelOutput(t *testing.T) {
	backend := &scriptedBackend{out: "   "}
	svc := New(0, 256, 0)

	_, err := svc.Summarize(context.Background(), backend, "business plan", "text")
	if kind, ok := llm.KindOf(err); !ok || kind != llm.KindMalformed {
		t.Fatalf("expected malformed kind for empty output, got %v", err)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	svc := New(0, 256, 0)
	if _, err := svc.Summarize(context.Background(), &scriptedBackend{}, "business plan", "   "); err == nil {
		t.Fatalf("expected error for empty document text")
	}
}

func TestDegradedDeterministic(t *testing.T) {
	svc := New(0, 256, 40)
	text := "First sentence here. Second sentence follows. Third one is cut."

	a := svc.Degraded(text)
	b := svc.Degraded(text)
	if a != b {
		t.Fatalf("degraded summary not deterministic: %q vs %q", a.Text, b.Text)
	}
	if a.Source != SourceDegraded {
		t.Fatalf("expected degraded source, got %s", a.Source)
	}
	if len(a.Text) > 40 {
		t.Fatalf("degraded summary exceeds cap: %d chars", len(a.Text))
	}
	if !strings.HasSuffix(a.Text, ".") {
		t.Fatalf("expected sentence-boundary cut, got %q", a.Text)
	}
}

func TestDegradedShortTextUnchanged(t *testing.T) {
	svc := New(0, 256, 600)
	got := svc.Degraded("  Short text.  ")
	if got.Text != "Short text." {
		t.Fatalf("unexpected degraded text %q", got.Text)
	}
}
