// Package predict ranks diseases for a set of canonical symptoms, preferring
// the classifier bundle and falling back to co-occurrence counting.
package predict

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"triage-backend/internal/catalog"
	"triage-backend/internal/classifier"
	"triage-backend/internal/shared/telemetry"
)

// Method names the strategy that produced a result.
type Method string

const (
	MethodML        Method = "ML"
	MethodRuleBased Method = "RULE_BASED"
)

// MaxPredictions caps the ranked list.
const MaxPredictions = 3

// RuleBasedConfidence is reported for every co-occurrence prediction.
const RuleBasedConfidence = 50.0

// ErrNoResult is returned by a strategy that produced nothing usable.
var ErrNoResult = errors.New("no prediction")

// Prediction is one ranked disease.
type Prediction struct {
	Disease    string
	Confidence float64
}

// Result is the ranked list, highest confidence first, and the method that
// produced it.
type Result struct {
	Method      Method
	Predictions []Prediction
}

// Predictor is immutable after construction and safe for concurrent use.
type Predictor struct {
	bundle  classifier.State
	records []catalog.Record
}

// New builds a predictor over the classifier state and co-occurrence records.
func New(bundle classifier.State, records []catalog.Record) *Predictor {
	if bundle == nil {
		bundle = classifier.Absent{Reason: classifier.ErrNoBundle}
	}
	return &Predictor{bundle: bundle, records: records}
}

// Predict never fails. When no strategy produces predictions the result is
// empty and reports MethodRuleBased, the last strategy attempted.
func (p *Predictor) Predict(symptoms []string) Result {
	switch b := p.bundle.(type) {
	case *classifier.Loaded:
		preds, err := predictML(b, symptoms)
		if err == nil {
			return Result{Method: MethodML, Predictions: preds}
		}
		telemetry.Debug("predict.ml_fallback", map[string]any{"reason": err.Error()})
	case classifier.Absent:
	}
	return Result{Method: MethodRuleBased, Predictions: p.predictRuleBased(symptoms)}
}

// UsedFallback reports whether a result came from the co-occurrence path
// while a classifier was loaded.
func (p *Predictor) UsedFallback(r Result) bool {
	return r.Method == MethodRuleBased && classifier.IsLoaded(p.bundle)
}

func predictML(b *classifier.Loaded, symptoms []string) (preds []Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			preds, err = nil, fmt.Errorf("classifier panic: %v", r)
		}
	}()

	features := make([]float32, len(b.Vocabulary))
	matched := 0
	for _, s := range symptoms {
		if i, ok := b.Index(s); ok {
			features[i] = 1
			matched++
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: no symptom in classifier vocabulary", ErrNoResult)
	}

	probs, err := b.Model.PredictProba(features)
	if err != nil {
		return nil, err
	}
	if len(probs) != len(b.Labels) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d labels", len(probs), len(b.Labels))
	}

	// NaN breaks the comparator, so unusable labels are dropped before sorting.
	order := make([]int, 0, len(probs))
	for i, prob := range probs {
		if prob > 0 && !math.IsNaN(prob) {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return probs[order[i]] > probs[order[j]] })
	if len(order) > MaxPredictions {
		order = order[:MaxPredictions]
	}

	for _, idx := range order {
		prob := probs[idx]
		preds = append(preds, Prediction{
			Disease:    b.Labels[idx],
			Confidence: math.Round(prob*100*100) / 100,
		})
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: all probabilities are zero", ErrNoResult)
	}
	return preds, nil
}

func (p *Predictor) predictRuleBased(symptoms []string) []Prediction {
	if len(symptoms) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(symptoms))
	for _, s := range symptoms {
		want[s] = struct{}{}
	}

	counts := make(map[string]int)
	var order []string
	for _, rec := range p.records {
		n := 0
		seen := make(map[string]struct{}, len(rec.Symptoms))
		for _, s := range rec.Symptoms {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			if _, ok := want[s]; ok {
				n++
			}
		}
		if n == 0 {
			continue
		}
		if _, ok := counts[rec.Disease]; !ok {
			order = append(order, rec.Disease)
		}
		counts[rec.Disease] += n
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > MaxPredictions {
		order = order[:MaxPredictions]
	}

	preds := make([]Prediction, 0, len(order))
	for _, d := range order {
		preds = append(preds, Prediction{Disease: d, Confidence: RuleBasedConfidence})
	}
	return preds
}
