package score

import (
	"math"
	"sort"

	"dealflow-backend/internal/rules"
	"dealflow-backend/internal/shared/util"
)

// The six evaluation categories, in report order.
const (
	CategoryBusinessIdea = "business_idea"
	CategoryMarket       = "market"
	CategoryBusinessPlan = "business_plan"
	CategoryTeam         = "team"
	CategoryFinancing    = "financing"
	CategoryPitchDeck    = "pitch_deck"
)

// Categories returns the category names in report order. The list is
// structural: rulesets tune weights for these names but cannot add or
// remove categories.
func Categories() []string {
	return []string{
		CategoryBusinessIdea,
		CategoryMarket,
		CategoryBusinessPlan,
		CategoryTeam,
		CategoryFinancing,
		CategoryPitchDeck,
	}
}

// Scores holds the six clamped category scores.
type Scores struct {
	BusinessIdea int `json:"business_idea"`
	Market       int `json:"market"`
	BusinessPlan int `json:"business_plan"`
	Team         int `json:"team"`
	Financing    int `json:"financing"`
	PitchDeck    int `json:"pitch_deck"`
}

// Total sums the six category scores.
func (s Scores) Total() int {
	return s.BusinessIdea + s.Market + s.BusinessPlan + s.Team + s.Financing + s.PitchDeck
}

// Get returns the score for a category name.
func (s Scores) Get(category string) (int, bool) {
	switch category {
	case CategoryBusinessIdea:
		return s.BusinessIdea, true
	case CategoryMarket:
		return s.Market, true
	case CategoryBusinessPlan:
		return s.BusinessPlan, true
	case CategoryTeam:
		return s.Team, true
	case CategoryFinancing:
		return s.Financing, true
	case CategoryPitchDeck:
		return s.PitchDeck, true
	default:
		return 0, false
	}
}

func (s *Scores) set(category string, value int) {
	switch category {
	case CategoryBusinessIdea:
		s.BusinessIdea = value
	case CategoryMarket:
		s.Market = value
	case CategoryBusinessPlan:
		s.BusinessPlan = value
	case CategoryTeam:
		s.Team = value
	case CategoryFinancing:
		s.Financing = value
	case CategoryPitchDeck:
		s.PitchDeck = value
	}
}

// keywordSignal computes the deterministic part of one category score: the
// weighted positive-minus-negative term count scaled so that a raw sum of
// Divisor maps to 100, clamped to [0, 100]. Term keys are walked in sorted
// order so float accumulation is reproducible.
func keywordSignal(cat rules.CategoryRules, normalized string) int {
	var raw float64
	for _, term := range sortedKeys(cat.Positive) {
		raw += float64(util.CountTerm(normalized, term)) * cat.Positive[term]
	}
	for _, term := range sortedKeys(cat.Negative) {
		raw -= float64(util.CountTerm(normalized, term)) * cat.Negative[term]
	}
	divisor := cat.Divisor
	if divisor <= 0 {
		divisor = 10
	}
	return clamp(int(math.Round(raw/divisor*100)), 0, 100)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
