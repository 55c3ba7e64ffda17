package llm

import (
	"strings"

	_ "embed"
)

var (
	//go:embed prompts/summary.txt
	summaryPrompt string
	//go:embed prompts/judgment.txt
	judgmentPrompt string
)

// BuildSummaryPrompt fills the summary template with the document text. The
// text is truncated to maxChars so oversized extractions cannot blow the
// backend's context window; zero disables the cap.
func BuildSummaryPrompt(docType, text string, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	replacer := strings.NewReplacer(
		"{{DOC_TYPE}}", docType,
		"{{DOCUMENT}}", text,
	)
	return replacer.Replace(summaryPrompt)
}

// BuildJudgmentPrompt fills the judgment template with the evaluation
// summaries and the category list the model must rate.
func BuildJudgmentPrompt(businessPlanSummary, pitchDeckSummary string, categories []string) string {
	replacer := strings.NewReplacer(
		"{{BUSINESS_PLAN}}", businessPlanSummary,
		"{{PITCH_DECK}}", pitchDeckSummary,
		"{{CATEGORIES}}", strings.Join(categories, ", "),
	)
	return replacer.Replace(judgmentPrompt)
}
