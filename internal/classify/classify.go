package classify

import (
	"strings"

	"dealflow-backend/internal/rules"
	"dealflow-backend/internal/shared/util"
)

// Label is a document sensitivity label.
type Label string

const (
	LabelClassified   Label = "classified"
	LabelUnclassified Label = "unclassified"
)

// ParseLabel validates a raw label string.
func ParseLabel(raw string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(LabelClassified):
		return LabelClassified, true
	case string(LabelUnclassified):
		return LabelUnclassified, true
	default:
		return "", false
	}
}

// Classifier assigns sensitivity labels from a fixed ruleset.
type Classifier struct {
	terms     map[string]float64
	threshold float64
}

// New builds a Classifier from classifier rules.
func New(r rules.ClassifierRules) *Classifier {
	terms := make(map[string]float64, len(r.Terms))
	for term, weight := range r.Terms {
		terms[strings.ToLower(strings.TrimSpace(term))] = weight
	}
	return &Classifier{terms: terms, threshold: r.Threshold}
}

// Classify returns the sensitivity label for text. A manual override, when
// present, is returned verbatim and the heuristic never runs. The heuristic
// is a pure function of the text and the ruleset: no randomness, no model.
func (c *Classifier) Classify(text string, override *Label) Label {
	if override != nil {
		return *override
	}
	if c.threshold > 0 && Density(text, c.terms) >= c.threshold {
		return LabelClassified
	}
	return LabelUnclassified
}

// Density computes weighted term hits per 1000 words of text. Exported so
// callers can log or tune against real corpora.
func Density(text string, terms map[string]float64) float64 {
	normalized := util.NormalizeText(text)
	if normalized == "" {
		return 0
	}
	words := util.WordCount(normalized)
	var hits float64
	for term, weight := range terms {
		if term == "" {
			continue
		}
		hits += float64(util.CountTerm(normalized, term)) * weight
	}
	return hits / float64(words) * 1000
}
