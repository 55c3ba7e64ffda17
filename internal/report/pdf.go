package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"dealflow-backend/internal/score"
)

func renderPDF(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Document metadata comes from the evaluation, not the clock, and the
	// catalogs are sorted, so the bytes are stable for identical inputs.
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(in.CreatedAt.UTC())
	pdf.SetModificationDate(in.CreatedAt.UTC())
	pdf.SetTitle("Evaluation Report: "+in.CompanyName, true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, "Evaluation Report: "+in.CompanyName, "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, fmt.Sprintf("Evaluation %s, created %s", in.EvaluationID, in.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	sectionTitle(pdf, "Scores")
	pdf.SetFont("Helvetica", "", 11)
	for _, category := range score.Categories() {
		value, _ := in.Scores.Get(category)
		pdf.CellFormat(110, 7, categoryTitle(category), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d / 100", value), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(110, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%d / 600", in.Scores.Total()), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	sectionTitle(pdf, "Assessment")
	bodyText(pdf, in.Summary)

	if notes := Notes(in); len(notes) > 0 {
		sectionTitle(pdf, "Review Notes")
		for _, note := range notes {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", note.Order, note.Title), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, note.Detail, "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(3)
	}

	sectionTitle(pdf, fmt.Sprintf("Application (%s)", sourceLabel(in.ApplicationSummary)))
	bodyText(pdf, in.ApplicationSummary.Text)

	sectionTitle(pdf, fmt.Sprintf("Pitch Deck (%s)", sourceLabel(in.PitchDeckSummary)))
	bodyText(pdf, in.PitchDeckSummary.Text)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func bodyText(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, text, "", "L", false)
	pdf.Ln(4)
}
