package report

import (
	"fmt"
	"strings"

	"dealflow-backend/internal/score"
)

func renderMarkdown(in Input) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Evaluation Report: %s\n\n", in.CompanyName)
	fmt.Fprintf(&b, "Evaluation %s, created %s.\n\n", in.EvaluationID, in.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Scores\n\n")
	b.WriteString("| Category | Score |\n")
	b.WriteString("|---|---|\n")
	for _, category := range score.Categories() {
		value, _ := in.Scores.Get(category)
		fmt.Fprintf(&b, "| %s | %d / 100 |\n", categoryTitle(category), value)
	}
	fmt.Fprintf(&b, "| **Total** | **%d / 600** |\n\n", in.Scores.Total())

	b.WriteString("## Assessment\n\n")
	b.WriteString(in.Summary)
	b.WriteString("\n\n")

	if notes := Notes(in); len(notes) > 0 {
		b.WriteString("## Review Notes\n\n")
		for _, note := range notes {
			fmt.Fprintf(&b, "%d. **%s**: %s\n", note.Order, note.Title, note.Detail)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Application (%s)\n\n", sourceLabel(in.ApplicationSummary))
	b.WriteString(in.ApplicationSummary.Text)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "## Pitch Deck (%s)\n\n", sourceLabel(in.PitchDeckSummary))
	b.WriteString(in.PitchDeckSummary.Text)
	b.WriteString("\n")

	return []byte(b.String())
}
