package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"dealflow-backend/internal/companies"
	"dealflow-backend/internal/evaluations"
	"dealflow-backend/internal/shared/telemetry"
	"dealflow-backend/internal/shared/util"
)

// ErrNotFound is returned when the company does not exist or belongs to
// someone else.
var ErrNotFound = errors.New("company not found")

const summaryCellChars = 200

// CompanySource resolves company records. Satisfied by companies.CompaniesRepo.
type CompanySource interface {
	GetByID(ctx context.Context, companyId string) (companies.Company, error)
}

// EvaluationSource lists a company's evaluations. Satisfied by
// evaluations.EvaluationsRepo.
type EvaluationSource interface {
	ListByCompany(ctx context.Context, companyId string, limit, offset int) ([]evaluations.Evaluation, error)
}

// Service produces XLSX bytes for evaluation-history downloads.
type Service struct {
	Companies CompanySource
	Evals     EvaluationSource
}

// EvaluationsXLSX builds one workbook with the company's full evaluation
// history, newest first, and returns the bytes plus a download file name.
func (s *Service) EvaluationsXLSX(ctx context.Context, userId, companyId string) ([]byte, string, error) {
	company, err := s.Companies.GetByID(ctx, companyId)
	if err != nil {
		if errors.Is(err, companies.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if company.UserID != userId {
		return nil, "", ErrNotFound
	}

	evals, err := s.Evals.ListByCompany(ctx, companyId, 0, 0)
	if err != nil {
		return nil, "", fmt.Errorf("list evaluations: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Evaluations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Created",
		"Business Idea",
		"Market",
		"Business Plan",
		"Team",
		"Financing",
		"Pitch Deck",
		"Total",
		"Scoring",
		"Summary",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, ev := range evals {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, ev.CreatedAt.UTC().Format("2006-01-02 15:04"))
		write(2, ev.Scores.BusinessIdea)
		write(3, ev.Scores.Market)
		write(4, ev.Scores.BusinessPlan)
		write(5, ev.Scores.Team)
		write(6, ev.Scores.Financing)
		write(7, ev.Scores.PitchDeck)
		write(8, ev.Total)
		if ev.HeuristicOnly {
			write(9, "heuristic")
		} else {
			write(9, "adjusted")
		}
		write(10, util.TruncateAtSentence(ev.Summary, summaryCellChars))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "H", 13)
	_ = f.SetColWidth(sheet, "I", "I", 10)
	_ = f.SetColWidth(sheet, "J", "J", 64)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("xlsx write: %w", err)
	}

	telemetry.Info("export.evaluations_xlsx", map[string]any{
		"company_id": companyId,
		"rows":       len(evals),
	})

	slug := util.Slugify(company.Name)
	if slug == "" {
		slug = "company"
	}
	return buf.Bytes(), slug + "-evaluations.xlsx", nil
}
