package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"dealflow-backend/internal/classify"
	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/extract"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/scheduler"
	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/storage/object"
	"dealflow-backend/internal/shared/telemetry"
	"dealflow-backend/internal/summarize"
	"dealflow-backend/internal/usage"
)

const textContentType = "text/plain; charset=utf-8"

// Service drives one document through extraction, classification and
// summarization. It implements scheduler.Processor; the scheduler
// guarantees at most one live job per document, and every state write goes
// through a status-guarded repo mutator, so a retried or duplicated job
// applies each transition at most once.
type Service struct {
	Repo       documents.DocumentsRepo
	Store      object.ObjectStore
	Classifier *classify.Classifier
	Summarizer *summarize.Service
	Router     *llm.Router
	Usage      *usage.Service
	// Policy bounds each stage's retry loop. Zero value falls back to the
	// scheduler default.
	Policy scheduler.Policy
}

// ProcessDocument advances a document from its current status to a
// terminal one. The loop re-reads the row before every step, so a stale
// queued job for a deleted or finished document is a no-op, and a crashed
// run resumes at the stage its status points to.
func (s *Service) ProcessDocument(ctx context.Context, documentID string) error {
	started := false
	for {
		if err := ctx.Err(); err != nil {
			return s.markCancelled(documentID, err)
		}

		doc, err := s.Repo.GetByID(ctx, documentID)
		if err != nil {
			if errors.Is(err, documents.ErrNotFound) {
				return nil
			}
			return err
		}
		if documents.IsTerminal(doc.Status) {
			return nil
		}
		if !started {
			metrics.DocumentsStarted.Inc()
			started = true
		}

		var stageErr error
		switch doc.Status {
		case documents.StatusPending:
			_, stageErr = s.Repo.Transition(ctx, doc.ID, documents.StatusPending, documents.StatusExtracting)
		case documents.StatusExtracting:
			stageErr = s.runExtract(ctx, doc)
		case documents.StatusExtracted:
			_, stageErr = s.Repo.Transition(ctx, doc.ID, documents.StatusExtracted, documents.StatusClassifying)
		case documents.StatusClassifying:
			stageErr = s.runClassify(ctx, doc)
		case documents.StatusClassified:
			_, stageErr = s.Repo.Transition(ctx, doc.ID, documents.StatusClassified, documents.StatusSummarizing)
		case documents.StatusSummarizing:
			stageErr = s.runSummarize(ctx, doc)
		default:
			stageErr = fmt.Errorf("unknown document status %q", doc.Status)
		}
		if stageErr != nil {
			return s.finishFailed(ctx, doc, stageErr)
		}
	}
}

// runExtract reads the original upload, extracts plain text and writes it
// at a deterministic key, so a retried stage overwrites its own earlier
// attempt.
func (s *Service) runExtract(ctx context.Context, doc documents.Document) error {
	defer stageTimer("extract")()

	textKey := textKeyFor(doc.ID)
	err := scheduler.Retry(ctx, "extract", s.policy(), retryableFailure, func(ctx context.Context) error {
		data, err := s.readObject(ctx, doc.StorageKey)
		if err != nil {
			return err
		}
		text, err := extract.Extract(data, doc.Format)
		if err != nil {
			return err
		}
		if _, err := s.Store.SaveWithKey(ctx, textKey, textContentType, strings.NewReader(text)); err != nil {
			return fmt.Errorf("%w: write extracted text: %v", errStorage, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := s.Repo.SetExtracted(ctx, doc.ID, textKey); err != nil {
		return err
	}
	return nil
}

// runClassify labels the extracted text. The heuristic itself cannot fail;
// only reading the text can, and that retries as a storage error.
func (s *Service) runClassify(ctx context.Context, doc documents.Document) error {
	defer stageTimer("classify")()

	text, err := s.readText(ctx, "classify", doc.TextKey)
	if err != nil {
		return err
	}

	var override *classify.Label
	if doc.SensitivityOverride != "" {
		if label, ok := classify.ParseLabel(doc.SensitivityOverride); ok {
			override = &label
		}
	}
	label := s.Classifier.Classify(text, override)

	if _, err := s.Repo.SetSensitivity(ctx, doc.ID, string(label)); err != nil {
		return err
	}
	telemetry.Info("document classified", map[string]any{
		"document_id": doc.ID,
		"sensitivity": string(label),
		"overridden":  override != nil,
	})
	return nil
}

// runSummarize routes a backend by the document's effective sensitivity and
// attempts the model summary under the stage budget. Exhaustion degrades to
// the deterministic fallback; this stage never fails the document except on
// cancellation.
func (s *Service) runSummarize(ctx context.Context, doc documents.Document) error {
	defer stageTimer("summarize")()

	text, err := s.readText(ctx, "summarize", doc.TextKey)
	if err != nil {
		return err
	}

	label, ok := classify.ParseLabel(doc.EffectiveSensitivity())
	if !ok {
		// Unlabelled rows take the restrictive route.
		label = classify.LabelClassified
	}
	backend := s.Usage.Instrument(doc.UserID, s.Router.Route(label))

	var summary summarize.Summary
	err = scheduler.Retry(ctx, "summarize", s.policy(), retryableFailure, func(ctx context.Context) error {
		var err error
		summary, err = s.Summarizer.Summarize(ctx, backend, docTypeFor(doc.Format), text)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		summary = s.Summarizer.Degraded(text)
		telemetry.Info("summary degraded", map[string]any{
			"document_id": doc.ID,
			"error":       errorText(err),
		})
	}

	applied, err := s.Repo.SetSummary(ctx, doc.ID, summary.Text, string(summary.Source))
	if err != nil {
		return err
	}
	if applied {
		metrics.DocumentsCompleted.Inc()
		telemetry.Info("document completed", map[string]any{
			"document_id":    doc.ID,
			"summary_source": string(summary.Source),
		})
	}
	return nil
}

// finishFailed records the terminal outcome for a stage error. Cancellation
// wins over failure; both marks run on a background context so the record
// survives the job context.
func (s *Service) finishFailed(ctx context.Context, doc documents.Document, stageErr error) error {
	if ctx.Err() != nil || errors.Is(stageErr, context.Canceled) {
		return s.markCancelled(doc.ID, stageErr)
	}

	code, _ := classifyFailure(stageErr)
	applied, err := s.Repo.MarkFailed(context.Background(), doc.ID, code)
	if err != nil {
		telemetry.Error("failure mark failed", map[string]any{
			"document_id": doc.ID,
			"error":       errorText(err),
		})
	} else if applied {
		metrics.DocumentsFailed.Inc()
	}
	telemetry.Error("document failed", map[string]any{
		"document_id":  doc.ID,
		"stage_status": doc.Status,
		"failure_code": code,
		"error":        errorText(stageErr),
	})
	return stageErr
}

func (s *Service) markCancelled(documentID string, cause error) error {
	applied, err := s.Repo.MarkCancelled(context.Background(), documentID)
	if err != nil {
		telemetry.Error("cancel mark failed", map[string]any{
			"document_id": documentID,
			"error":       errorText(err),
		})
		return cause
	}
	if applied {
		metrics.DocumentsCancelled.Inc()
		telemetry.Info("document cancelled", map[string]any{"document_id": documentID})
	}
	return cause
}

func (s *Service) policy() scheduler.Policy {
	if s.Policy.MaxAttempts > 0 || s.Policy.BaseDelay > 0 {
		return s.Policy
	}
	return scheduler.DefaultPolicy()
}

func (s *Service) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errStorage, key, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", errStorage, key, err)
	}
	return b, nil
}

// readText loads the extracted text under the stage's retry budget.
func (s *Service) readText(ctx context.Context, stage, textKey string) (string, error) {
	var text string
	err := scheduler.Retry(ctx, stage, s.policy(), retryableFailure, func(ctx context.Context) error {
		b, err := s.readObject(ctx, textKey)
		if err != nil {
			return err
		}
		text = string(b)
		return nil
	})
	return text, err
}

// textKeyFor is the deterministic storage key for a document's extracted
// text. documents.Service.Delete removes it alongside the original.
func textKeyFor(documentID string) string {
	return "text/" + documentID + ".txt"
}

func docTypeFor(format string) string {
	if format == extract.FormatPPTX {
		return "pitch deck"
	}
	return "business document"
}

func stageTimer(stage string) func() {
	start := time.Now()
	return func() {
		metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
