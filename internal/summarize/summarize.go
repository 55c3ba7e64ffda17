package summarize

import (
	"context"
	"errors"
	"strings"

	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/shared/util"
)

// Source tags where a summary came from so downstream consumers can tell
// model output from the deterministic fallback.
type Source string

const (
	SourceModel    Source = "model"
	SourceDegraded Source = "fallback"
)

// Summary is the produced summary text plus its provenance.
type Summary struct {
	Text   string
	Source Source
}

// Service builds prompts and runs single summarization attempts. It never
// retries; the scheduler owns the retry budget and calls Degraded when the
// budget runs out.
type Service struct {
	maxPromptChars int
	maxTokens      int
	fallbackChars  int
}

// New constructs a summarizer. Zero values fall back to working defaults.
func New(maxPromptChars, maxTokens, fallbackChars int) *Service {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	if fallbackChars <= 0 {
		fallbackChars = 600
	}
	return &Service{
		maxPromptChars: maxPromptChars,
		maxTokens:      maxTokens,
		fallbackChars:  fallbackChars,
	}
}

// Summarize runs one completion attempt against the routed backend. Backend
// failures pass through unchanged so the caller can read the error kind.
func (s *Service) Summarize(ctx context.Context, backend llm.Backend, docType, text string) (Summary, error) {
	if strings.TrimSpace(text) == "" {
		return Summary{}, errors.New("summarize: empty document text")
	}
	prompt := llm.BuildSummaryPrompt(docType, text, s.maxPromptChars)
	out, err := backend.Complete(ctx, prompt, s.maxTokens)
	if err != nil {
		return Summary{}, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return Summary{}, &llm.BackendError{Backend: backend.Name(), Kind: llm.KindMalformed, Err: errors.New("empty summary")}
	}
	return Summary{Text: out, Source: SourceModel}, nil
}

// Degraded produces the deterministic fallback summary: the head of the
// extracted text trimmed at a sentence boundary.
func (s *Service) Degraded(text string) Summary {
	return Summary{
		Text:   util.TruncateAtSentence(strings.TrimSpace(text), s.fallbackChars),
		Source: SourceDegraded,
	}
}
