package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/rules"
	"dealflow-backend/internal/shared/util"
)

const judgmentMaxTokens = 200

// Mode records whether model adjustment was applied to a score run.
type Mode string

const (
	ModeAdjusted  Mode = "adjusted"
	ModeHeuristic Mode = "heuristic"
)

// Input carries the texts a score run reads. Keyword signals come from the
// full extracted texts; the judgment prompt prefers the shorter summaries.
type Input struct {
	ApplicationText    string
	PitchDeckText      string
	ApplicationSummary string
	PitchDeckSummary   string
}

// Engine computes the six category scores. The keyword part is a pure
// function of text and ruleset; the model adjustment is bounded and
// optional, so a dead backend degrades to pure keyword scoring instead of
// failing the evaluation.
type Engine struct {
	scoring rules.ScoringRules
	adjust  rules.AdjustmentRules
	schema  *jsonschema.Schema
}

// NewEngine builds an engine and compiles the verdict schema from the
// ruleset's delta table.
func NewEngine(rs rules.Ruleset) (*Engine, error) {
	schema, err := compileVerdictSchema(rs.Adjustment)
	if err != nil {
		return nil, err
	}
	return &Engine{scoring: rs.Scoring, adjust: rs.Adjustment, schema: schema}, nil
}

// Score computes all six categories. A nil backend, or any failure of the
// judgment call, yields ModeHeuristic with zero adjustments; identical input
// then scores identically on every run.
func (e *Engine) Score(ctx context.Context, backend llm.Backend, in Input) (Scores, Mode) {
	appText := util.NormalizeText(in.ApplicationText)
	deckText := util.NormalizeText(in.PitchDeckText)

	var scores Scores
	for _, category := range Categories() {
		text := appText
		if category == CategoryPitchDeck {
			text = deckText
		}
		scores.set(category, keywordSignal(e.scoring.Categories[category], text))
	}

	if backend == nil {
		return scores, ModeHeuristic
	}
	deltas, err := e.judgment(ctx, backend, in)
	if err != nil {
		return scores, ModeHeuristic
	}
	for _, category := range Categories() {
		base, _ := scores.Get(category)
		scores.set(category, clamp(base+deltas[category], 0, 100))
	}
	return scores, ModeAdjusted
}

// judgment asks the routed backend for a categorical verdict per category
// and maps verdicts to bounded deltas. Any transport, parse, or schema
// failure rejects the whole response.
func (e *Engine) judgment(ctx context.Context, backend llm.Backend, in Input) (map[string]int, error) {
	plan := in.ApplicationSummary
	if strings.TrimSpace(plan) == "" {
		plan = util.TruncateAtSentence(in.ApplicationText, 2000)
	}
	deck := in.PitchDeckSummary
	if strings.TrimSpace(deck) == "" {
		deck = util.TruncateAtSentence(in.PitchDeckText, 2000)
	}

	prompt := llm.BuildJudgmentPrompt(plan, deck, Categories())
	out, err := backend.Complete(ctx, prompt, judgmentMaxTokens)
	if err != nil {
		return nil, err
	}

	raw := stripJSONFences(out)
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("judgment parse: %w", err)
	}
	if err := e.schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("judgment schema: %w", err)
	}

	verdicts := payload.(map[string]any)
	deltas := make(map[string]int, len(verdicts))
	for category, v := range verdicts {
		verdict, _ := v.(string)
		delta := e.adjust.Deltas[strings.ToLower(strings.TrimSpace(verdict))]
		deltas[category] = clamp(delta, e.adjust.Min, e.adjust.Max)
	}
	return deltas, nil
}

// compileVerdictSchema builds the response contract: one object keyed by the
// six categories, each value an allowed verdict string, nothing else.
func compileVerdictSchema(adjust rules.AdjustmentRules) (*jsonschema.Schema, error) {
	verdicts := make([]string, 0, len(adjust.Deltas))
	for verdict := range adjust.Deltas {
		verdicts = append(verdicts, verdict)
	}
	sort.Strings(verdicts)

	properties := make(map[string]any, len(Categories()))
	for _, category := range Categories() {
		properties[category] = map[string]any{"type": "string", "enum": verdicts}
	}
	schemaMap := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             Categories(),
		"additionalProperties": false,
	}

	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal verdict schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("verdicts.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add verdict schema: %w", err)
	}
	schema, err := compiler.Compile("verdicts.json")
	if err != nil {
		return nil, fmt.Errorf("compile verdict schema: %w", err)
	}
	return schema, nil
}

// stripJSONFences unwraps a markdown code fence if the model added one.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
