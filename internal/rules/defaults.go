package rules

// Default returns the compiled-in ruleset. The weights and thresholds here
// are starting points; deployments tune them through the YAML file.
func Default() Ruleset {
	return Ruleset{
		Classifier: ClassifierRules{
			Threshold: 6.0,
			Terms: map[string]float64{
				"confidential":         3,
				"strictly confidential": 4,
				"proprietary":          2,
				"trade secret":         4,
				"nda":                  3,
				"non-disclosure":       3,
				"internal use only":    3,
				"restricted":           2,
				"export control":       4,
				"itar":                 4,
				"security clearance":   4,
				"classified":           4,
				"do not distribute":    3,
				"embargoed":            2,
				"patent pending":       1,
				"pii":                  2,
				"personal data":        1,
			},
		},
		Scoring: ScoringRules{
			Categories: map[string]CategoryRules{
				"business_idea": {
					Divisor: 12,
					Positive: map[string]float64{
						"innovative": 2, "unique": 2, "novel": 2, "patent": 3,
						"disruptive": 2, "value proposition": 3, "problem": 1,
						"solution": 1, "differentiated": 2, "intellectual property": 3,
					},
					Negative: map[string]float64{
						"copycat": 3, "me-too": 3, "commodity": 2,
					},
				},
				"market": {
					Divisor: 12,
					Positive: map[string]float64{
						"market size": 3, "tam": 3, "sam": 2, "som": 2,
						"growth": 2, "demand": 2, "traction": 3, "customers": 2,
						"segment": 1, "billion": 2, "expanding": 2,
					},
					Negative: map[string]float64{
						"saturated": 3, "declining": 3, "shrinking": 3,
					},
				},
				"business_plan": {
					Divisor: 12,
					Positive: map[string]float64{
						"milestones": 2, "roadmap": 2, "go-to-market": 3,
						"revenue model": 3, "pricing": 2, "strategy": 2,
						"forecast": 2, "business model": 3, "kpi": 1,
						"distribution": 1,
					},
					Negative: map[string]float64{
						"tbd": 2, "to be determined": 2, "unclear": 2,
					},
				},
				"team": {
					Divisor: 10,
					Positive: map[string]float64{
						"founder": 2, "co-founder": 2, "experience": 2,
						"track record": 3, "serial entrepreneur": 3, "phd": 2,
						"cto": 2, "expertise": 2, "advisor": 1, "previously": 1,
						"exit": 2,
					},
					Negative: map[string]float64{
						"vacant": 2, "no technical": 3,
					},
				},
				"financing": {
					Divisor: 12,
					Positive: map[string]float64{
						"revenue": 2, "funding": 2, "runway": 2, "break-even": 3,
						"profitability": 3, "margin": 2, "recurring": 3,
						"cash flow": 2, "seed": 1, "series a": 2, "investment": 1,
					},
					Negative: map[string]float64{
						"insolvent": 4, "defaulted": 4, "heavy losses": 3,
					},
				},
				"pitch_deck": {
					Divisor: 12,
					Positive: map[string]float64{
						"demo": 2, "traction": 3, "competition": 2,
						"use of funds": 3, "ask": 1, "milestones": 2,
						"problem": 1, "solution": 1, "roadmap": 2, "metrics": 2,
						"unit economics": 3,
					},
					Negative: map[string]float64{
						"outdated": 2, "placeholder": 2,
					},
				},
			},
		},
		Adjustment: AdjustmentRules{
			Min: -20,
			Max: 20,
			Deltas: map[string]int{
				"strong":    20,
				"promising": 10,
				"neutral":   0,
				"weak":      -10,
				"poor":      -20,
			},
		},
	}
}
