package report

import (
	"fmt"
	"sort"

	"dealflow-backend/internal/score"
	"dealflow-backend/internal/summarize"
)

// Note is a deterministic reviewer hint derived from an evaluation.
type Note struct {
	ID     string
	Kind   string
	Title  string
	Detail string
	Order  int
}

// Note kinds.
const (
	KindConcern  = "concern"
	KindCaveat   = "caveat"
	KindStrength = "strength"
)

const (
	strengthAt = 70
	concernAt  = 40
	maxNotes   = 7
)

// Notes derives reviewer notes from the scores and the summary provenance.
// Output is a pure function of the input: same evaluation, same notes.
func Notes(in Input) []Note {
	candidates := make([]Note, 0, 10)
	for _, category := range score.Categories() {
		value, _ := in.Scores.Get(category)
		title := categoryTitle(category)
		switch {
		case value >= strengthAt:
			candidates = append(candidates, Note{
				ID:     "STRENGTH_" + category,
				Kind:   KindStrength,
				Title:  title + " scores well",
				Detail: fmt.Sprintf("%s scored %d of 100.", title, value),
			})
		case value <= concernAt:
			candidates = append(candidates, Note{
				ID:     "CONCERN_" + category,
				Kind:   KindConcern,
				Title:  title + " needs scrutiny",
				Detail: fmt.Sprintf("%s scored %d of 100; verify against the source documents.", title, value),
			})
		}
	}
	if in.Mode == score.ModeHeuristic {
		candidates = append(candidates, Note{
			ID:     "CAVEAT_keyword_only",
			Kind:   KindCaveat,
			Title:  "Scores are keyword-only",
			Detail: "The model adjustment was unavailable for this run; scores reflect keyword signals alone.",
		})
	}
	if in.ApplicationSummary.Source == summarize.SourceDegraded {
		candidates = append(candidates, Note{
			ID:     "CAVEAT_application_excerpt",
			Kind:   KindCaveat,
			Title:  "Application summary is an excerpt",
			Detail: "The application summary below is a document excerpt, not model output.",
		})
	}
	if in.PitchDeckSummary.Source == summarize.SourceDegraded {
		candidates = append(candidates, Note{
			ID:     "CAVEAT_pitch_deck_excerpt",
			Kind:   KindCaveat,
			Title:  "Pitch deck summary is an excerpt",
			Detail: "The pitch deck summary below is a document excerpt, not model output.",
		})
	}

	notes := dedupe(candidates)
	sort.SliceStable(notes, func(i, j int) bool {
		if kindRank(notes[i].Kind) != kindRank(notes[j].Kind) {
			return kindRank(notes[i].Kind) > kindRank(notes[j].Kind)
		}
		return notes[i].Title < notes[j].Title
	})
	if len(notes) > maxNotes {
		notes = notes[:maxNotes]
	}
	for i := range notes {
		notes[i].Order = i + 1
	}
	return notes
}

func kindRank(kind string) int {
	switch kind {
	case KindConcern:
		return 3
	case KindCaveat:
		return 2
	case KindStrength:
		return 1
	default:
		return 0
	}
}

func dedupe(items []Note) []Note {
	seen := make(map[string]bool, len(items))
	out := make([]Note, 0, len(items))
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}
