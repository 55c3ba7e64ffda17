package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dealflow-backend/internal/score"
	"dealflow-backend/internal/shared/util"
	"dealflow-backend/internal/summarize"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

// ErrRenderIncomplete means the evaluation is missing fields a report
// requires. Rendering never substitutes defaults for them.
var ErrRenderIncomplete = errors.New("evaluation incomplete")

// Input is everything one report render reads. CreatedAt is the
// evaluation's own timestamp, never wall clock, so identical inputs produce
// identical bytes.
type Input struct {
	CompanyName        string
	EvaluationID       string
	CreatedAt          time.Time
	Scores             score.Scores
	Mode               score.Mode
	Summary            string
	ApplicationSummary summarize.Summary
	PitchDeckSummary   summarize.Summary
}

// Render produces the report artifact in the requested format.
func Render(in Input, format string) ([]byte, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	switch format {
	case FormatMarkdown:
		return renderMarkdown(in), nil
	case FormatPDF:
		return renderPDF(in)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// MimeType returns the content type for a report format.
func MimeType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// FileName builds the download name for a report artifact.
func FileName(companyName, format string) string {
	slug := util.Slugify(companyName)
	if slug == "" {
		slug = "company"
	}
	if format == FormatPDF {
		return slug + "-evaluation.pdf"
	}
	return slug + "-evaluation.md"
}

func validate(in Input) error {
	switch {
	case strings.TrimSpace(in.CompanyName) == "":
		return fmt.Errorf("%w: company name missing", ErrRenderIncomplete)
	case strings.TrimSpace(in.EvaluationID) == "":
		return fmt.Errorf("%w: evaluation id missing", ErrRenderIncomplete)
	case in.CreatedAt.IsZero():
		return fmt.Errorf("%w: evaluation timestamp missing", ErrRenderIncomplete)
	case strings.TrimSpace(in.Summary) == "":
		return fmt.Errorf("%w: evaluation summary missing", ErrRenderIncomplete)
	case strings.TrimSpace(in.ApplicationSummary.Text) == "":
		return fmt.Errorf("%w: application summary missing", ErrRenderIncomplete)
	case strings.TrimSpace(in.PitchDeckSummary.Text) == "":
		return fmt.Errorf("%w: pitch deck summary missing", ErrRenderIncomplete)
	}
	return nil
}

// categoryTitle turns a category name into display text.
func categoryTitle(category string) string {
	words := strings.Split(strings.ReplaceAll(category, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sourceLabel(s summarize.Summary) string {
	if s.Source == summarize.SourceDegraded {
		return "excerpt (model summary unavailable)"
	}
	return "model summary"
}
