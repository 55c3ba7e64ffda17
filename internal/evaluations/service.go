package evaluations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealflow-backend/internal/classify"
	"dealflow-backend/internal/companies"
	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/report"
	"dealflow-backend/internal/score"
	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/storage/object"
	"dealflow-backend/internal/shared/telemetry"
	"dealflow-backend/internal/shared/util"
	"dealflow-backend/internal/summarize"
	"dealflow-backend/internal/usage"
)

const summaryExcerptChars = 280

// CompanySource resolves company records. Satisfied by companies.CompaniesRepo.
type CompanySource interface {
	GetByID(ctx context.Context, companyId string) (companies.Company, error)
}

// DocumentSource resolves document records. Satisfied by documents.DocumentsRepo.
type DocumentSource interface {
	GetByID(ctx context.Context, documentId string) (documents.Document, error)
}

// Scorer computes the six category scores for a pair of document texts.
// Satisfied by *score.Engine.
type Scorer interface {
	Score(ctx context.Context, backend llm.Backend, in score.Input) (score.Scores, score.Mode)
}

// Service runs evaluations and renders their reports. Scoring happens
// synchronously in the request: the score engine degrades on backend
// failure instead of blocking, so there is nothing to queue.
type Service struct {
	Repo      EvaluationsRepo
	Companies CompanySource
	Docs      DocumentSource
	Store     object.ObjectStore
	Router    *llm.Router
	Scorer    Scorer
	Usage     *usage.Service
}

// Artifact is a rendered report ready for download.
type Artifact struct {
	Data     []byte
	MimeType string
	FileName string
}

// Evaluate scores a company's linked documents and appends a new
// evaluation row. Both documents must be linked and completed.
func (s *Service) Evaluate(ctx context.Context, userId, companyId string) (Evaluation, error) {
	company, err := s.company(ctx, userId, companyId)
	if err != nil {
		return Evaluation{}, err
	}
	if company.ApplicationDocID == "" || company.PitchDeckDocID == "" {
		return Evaluation{}, fmt.Errorf("%w: both documents must be linked", ErrScoringIncomplete)
	}

	appDoc, err := s.readyDocument(ctx, company.ApplicationDocID)
	if err != nil {
		return Evaluation{}, err
	}
	deckDoc, err := s.readyDocument(ctx, company.PitchDeckDocID)
	if err != nil {
		return Evaluation{}, err
	}

	appText, err := s.loadText(ctx, appDoc)
	if err != nil {
		return Evaluation{}, err
	}
	deckText, err := s.loadText(ctx, deckDoc)
	if err != nil {
		return Evaluation{}, err
	}

	// One classified document makes the whole run classified: the routed
	// handle then holds no remote reference at all.
	label := classify.LabelUnclassified
	if appDoc.EffectiveSensitivity() == string(classify.LabelClassified) ||
		deckDoc.EffectiveSensitivity() == string(classify.LabelClassified) {
		label = classify.LabelClassified
	}
	backend := s.Usage.Instrument(userId, s.Router.Route(label))

	scores, mode := s.Scorer.Score(ctx, backend, score.Input{
		ApplicationText:    appText,
		PitchDeckText:      deckText,
		ApplicationSummary: appDoc.Summary,
		PitchDeckSummary:   deckDoc.Summary,
	})

	ev := Evaluation{
		ID:            uuid.NewString(),
		CompanyID:     company.ID,
		Scores:        scores,
		Total:         scores.Total(),
		Summary:       composeSummary(company.Name, scores, appDoc.Summary, deckDoc.Summary),
		HeuristicOnly: mode == score.ModeHeuristic,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, ev); err != nil {
		return Evaluation{}, err
	}

	metrics.EvaluationsCreated.WithLabelValues(string(mode)).Inc()
	telemetry.Info("evaluations.created", map[string]any{
		"evaluation_id": ev.ID,
		"company_id":    company.ID,
		"total":         ev.Total,
		"mode":          string(mode),
	})
	return ev, nil
}

// Get returns an evaluation the caller owns through its company.
func (s *Service) Get(ctx context.Context, userId, evaluationId string) (Evaluation, error) {
	ev, err := s.Repo.GetByID(ctx, evaluationId)
	if err != nil {
		return Evaluation{}, err
	}
	if _, err := s.company(ctx, userId, ev.CompanyID); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

// ListByCompany returns a company's evaluation history, newest first.
func (s *Service) ListByCompany(ctx context.Context, userId, companyId string, limit, offset int) ([]Evaluation, error) {
	if _, err := s.company(ctx, userId, companyId); err != nil {
		return nil, err
	}
	return s.Repo.ListByCompany(ctx, companyId, limit, offset)
}

// RenderReport joins an evaluation with its company and document summaries
// and renders the artifact in the requested format.
func (s *Service) RenderReport(ctx context.Context, userId, evaluationId, format string) (Artifact, error) {
	ev, err := s.Repo.GetByID(ctx, evaluationId)
	if err != nil {
		return Artifact{}, err
	}
	company, err := s.company(ctx, userId, ev.CompanyID)
	if err != nil {
		return Artifact{}, err
	}

	appSummary, err := s.documentSummary(ctx, company.ApplicationDocID)
	if err != nil {
		return Artifact{}, err
	}
	deckSummary, err := s.documentSummary(ctx, company.PitchDeckDocID)
	if err != nil {
		return Artifact{}, err
	}

	mode := score.ModeAdjusted
	if ev.HeuristicOnly {
		mode = score.ModeHeuristic
	}
	data, err := report.Render(report.Input{
		CompanyName:        company.Name,
		EvaluationID:       ev.ID,
		CreatedAt:          ev.CreatedAt,
		Scores:             ev.Scores,
		Mode:               mode,
		Summary:            ev.Summary,
		ApplicationSummary: appSummary,
		PitchDeckSummary:   deckSummary,
	}, format)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Data:     data,
		MimeType: report.MimeType(format),
		FileName: report.FileName(company.Name, format),
	}, nil
}

// company loads a company and enforces ownership. Foreign and missing
// companies look identical to the caller.
func (s *Service) company(ctx context.Context, userId, companyId string) (companies.Company, error) {
	company, err := s.Companies.GetByID(ctx, companyId)
	if err != nil {
		if errors.Is(err, companies.ErrNotFound) {
			return companies.Company{}, ErrNotFound
		}
		return companies.Company{}, err
	}
	if company.UserID != userId {
		return companies.Company{}, ErrNotFound
	}
	return company, nil
}

// readyDocument resolves a linked document and requires it to be completed.
func (s *Service) readyDocument(ctx context.Context, documentId string) (documents.Document, error) {
	doc, err := s.Docs.GetByID(ctx, documentId)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return documents.Document{}, fmt.Errorf("%w: linked document missing", ErrScoringIncomplete)
		}
		return documents.Document{}, err
	}
	if doc.Status != documents.StatusCompleted {
		return documents.Document{}, fmt.Errorf("%w: document %s is %s", ErrScoringIncomplete, doc.ID, doc.Status)
	}
	return doc, nil
}

// loadText reads a document's extracted text from the object store.
func (s *Service) loadText(ctx context.Context, doc documents.Document) (string, error) {
	if doc.TextKey == "" {
		return "", fmt.Errorf("%w: document %s has no extracted text", ErrScoringIncomplete, doc.ID)
	}
	rc, err := s.Store.Open(ctx, doc.TextKey)
	if err != nil {
		return "", fmt.Errorf("open extracted text: %w", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return string(b), nil
}

// documentSummary resolves a linked document's stored summary for the
// report. A missing link or summary makes the report incomplete rather
// than silently blank.
func (s *Service) documentSummary(ctx context.Context, documentId string) (summarize.Summary, error) {
	if documentId == "" {
		return summarize.Summary{}, fmt.Errorf("%w: document no longer linked", report.ErrRenderIncomplete)
	}
	doc, err := s.Docs.GetByID(ctx, documentId)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return summarize.Summary{}, fmt.Errorf("%w: linked document missing", report.ErrRenderIncomplete)
		}
		return summarize.Summary{}, err
	}
	return summarize.Summary{
		Text:   doc.Summary,
		Source: summarize.Source(doc.SummarySource),
	}, nil
}

// composeSummary builds the evaluation summary without a model call, so
// identical scores and summaries always produce identical text. Ties pick
// the earlier category in report order.
func composeSummary(companyName string, scores score.Scores, appSummary, deckSummary string) string {
	best, worst := score.Categories()[0], score.Categories()[0]
	bestVal, _ := scores.Get(best)
	worstVal := bestVal
	for _, category := range score.Categories()[1:] {
		v, _ := scores.Get(category)
		if v > bestVal {
			best, bestVal = category, v
		}
		if v < worstVal {
			worst, worstVal = category, v
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s scored %d of 600.", companyName, scores.Total())
	fmt.Fprintf(&b, " Strongest category: %s (%d). Weakest category: %s (%d).",
		categoryLabel(best), bestVal, categoryLabel(worst), worstVal)
	if excerpt := strings.TrimSpace(util.TruncateAtSentence(appSummary, summaryExcerptChars)); excerpt != "" {
		b.WriteString(" Application: " + excerpt)
	}
	if excerpt := strings.TrimSpace(util.TruncateAtSentence(deckSummary, summaryExcerptChars)); excerpt != "" {
		b.WriteString(" Pitch deck: " + excerpt)
	}
	return b.String()
}

func categoryLabel(category string) string {
	return strings.ReplaceAll(category, "_", " ")
}
