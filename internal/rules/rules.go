package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ruleset bundles the tunable parameters of the classifier and the scorer.
// Values ship with compiled-in defaults; a YAML file overrides per section.
type Ruleset struct {
	Classifier ClassifierRules `yaml:"classifier"`
	Scoring    ScoringRules    `yaml:"scoring"`
	Adjustment AdjustmentRules `yaml:"adjustment"`
}

// ClassifierRules drives the sensitivity heuristic.
type ClassifierRules struct {
	// Terms maps a lower-case term or phrase to its weight.
	Terms map[string]float64 `yaml:"terms"`
	// Threshold is the weighted-hit density (per 1000 words) at or above
	// which text is labeled classified.
	Threshold float64 `yaml:"threshold"`
}

// ScoringRules holds per-category keyword weights.
type ScoringRules struct {
	Categories map[string]CategoryRules `yaml:"categories"`
}

// CategoryRules weights positive and negative terms for one score category.
type CategoryRules struct {
	Positive map[string]float64 `yaml:"positive"`
	Negative map[string]float64 `yaml:"negative"`
	// Divisor is the raw weighted sum that maps to a signal of 100.
	Divisor float64 `yaml:"divisor"`
}

// AdjustmentRules maps model verdicts to score deltas.
type AdjustmentRules struct {
	Deltas map[string]int `yaml:"deltas"`
	Min    int            `yaml:"min"`
	Max    int            `yaml:"max"`
}

// Load reads the ruleset file at path and merges it over the defaults.
// A missing file yields the defaults; a malformed file is an error.
func Load(path string) (Ruleset, error) {
	rs := Default()
	if path == "" {
		return rs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rs, nil
		}
		return rs, fmt.Errorf("read ruleset: %w", err)
	}
	var file Ruleset
	if err := yaml.Unmarshal(data, &file); err != nil {
		return rs, fmt.Errorf("parse ruleset: %w", err)
	}
	merge(&rs, file)
	return rs, nil
}

func merge(dst *Ruleset, src Ruleset) {
	if len(src.Classifier.Terms) > 0 {
		dst.Classifier.Terms = src.Classifier.Terms
	}
	if src.Classifier.Threshold > 0 {
		dst.Classifier.Threshold = src.Classifier.Threshold
	}
	if len(src.Scoring.Categories) > 0 {
		for name, cat := range src.Scoring.Categories {
			base := dst.Scoring.Categories[name]
			if len(cat.Positive) > 0 {
				base.Positive = cat.Positive
			}
			if len(cat.Negative) > 0 {
				base.Negative = cat.Negative
			}
			if cat.Divisor > 0 {
				base.Divisor = cat.Divisor
			}
			dst.Scoring.Categories[name] = base
		}
	}
	if len(src.Adjustment.Deltas) > 0 {
		dst.Adjustment.Deltas = src.Adjustment.Deltas
	}
	if src.Adjustment.Min != 0 || src.Adjustment.Max != 0 {
		dst.Adjustment.Min = src.Adjustment.Min
		dst.Adjustment.Max = src.Adjustment.Max
	}
}
