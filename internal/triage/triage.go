// Package triage scores severity and attaches reference text to predictions.
package triage

import (
	"strings"

	"triage-backend/internal/catalog"
	"triage-backend/internal/predict"
)

// Level is a coarse urgency classification.
type Level string

const (
	Green  Level = "GREEN"
	Yellow Level = "YELLOW"
	Red    Level = "RED"
)

// Score thresholds are exclusive lower bounds.
const (
	RedAbove    = 15
	YellowAbove = 8
)

// CriticalKeywords force RED when the top disease name contains one of them.
// Matching is case-sensitive.
var CriticalKeywords = []string{"Heart", "Stroke", "Paralysis", "Dengue", "Typhoid"}

// Weights supplies per-symptom severity weights.
type Weights interface {
	Weight(symptom string) int
}

// Score sums the weight of every symptom.
func Score(w Weights, symptoms []string) int {
	total := 0
	for _, s := range symptoms {
		total += w.Weight(s)
	}
	return total
}

// LevelFor maps a score to a level, then applies the critical-disease
// override using only the top prediction.
func LevelFor(score int, preds []predict.Prediction) Level {
	level := Green
	switch {
	case score > RedAbove:
		level = Red
	case score > YellowAbove:
		level = Yellow
	}
	if len(preds) > 0 && isCritical(preds[0].Disease) {
		return Red
	}
	return level
}

func isCritical(disease string) bool {
	for _, k := range CriticalKeywords {
		if strings.Contains(disease, k) {
			return true
		}
	}
	return false
}

// Enriched is a prediction with its description and precautions.
type Enriched struct {
	Disease     string   `json:"disease"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// Enrich looks up description and precautions by exact disease name. Missing
// entries yield an empty description and an empty list.
func Enrich(c *catalog.Catalog, preds []predict.Prediction) []Enriched {
	out := make([]Enriched, 0, len(preds))
	for _, p := range preds {
		desc, _ := c.Description(p.Disease)
		precautions := c.Precautions(p.Disease)
		if precautions == nil {
			precautions = []string{}
		}
		out = append(out, Enriched{
			Disease:     p.Disease,
			Confidence:  p.Confidence,
			Description: desc,
			Precautions: precautions,
		})
	}
	return out
}
