package predict

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"triage-backend/internal/catalog"
	"triage-backend/internal/classifier"
)

type stubModel struct {
	probs []float64
	err   error
	panic bool
	calls [][]float32
}

func (m *stubModel) PredictProba(features []float32) ([]float64, error) {
	m.calls = append(m.calls, append([]float32(nil), features...))
	if m.panic {
		panic("model exploded")
	}
	return m.probs, m.err
}

var testRecords = []catalog.Record{
	{Disease: "Malaria", Symptoms: []string{"high_fever", "chills", "sweating"}},
	{Disease: "Flu", Symptoms: []string{"high_fever", "cough"}},
	{Disease: "Malaria", Symptoms: []string{"chills", "headache"}},
	{Disease: "Migraine", Symptoms: []string{"headache"}},
	{Disease: "Acne", Symptoms: []string{"skin_rash"}},
}

func loadedBundle(t *testing.T, m classifier.Model) *classifier.Loaded {
	t.Helper()
	b, err := classifier.NewLoaded(
		[]string{"chills", "cough", "headache", "high_fever"},
		m,
		[]string{"Flu", "Malaria", "Migraine", "Typhoid"},
	)
	if err != nil {
		t.Fatalf("NewLoaded: %v", err)
	}
	return b
}

func TestPredictMLTopThreeRounded(t *testing.T) {
	model := &stubModel{probs: []float64{0.123456, 0.5, 0.3, 0.076544}}
	p := New(loadedBundle(t, model), testRecords)

	got := p.Predict([]string{"high_fever", "chills", "unknown"})
	want := Result{Method: MethodML, Predictions: []Prediction{
		{Disease: "Malaria", Confidence: 50},
		{Disease: "Migraine", Confidence: 30},
		{Disease: "Flu", Confidence: 12.35},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Predict = %#v, want %#v", got, want)
	}
	if wantVec := []float32{1, 0, 0, 1}; !reflect.DeepEqual(model.calls[0], wantVec) {
		t.Fatalf("feature vector = %v, want %v", model.calls[0], wantVec)
	}
	if p.UsedFallback(got) {
		t.Fatalf("UsedFallback should be false for ML result")
	}
}

func TestPredictMLDropsZeroProbabilities(t *testing.T) {
	model := &stubModel{probs: []float64{0, 0.9, 0, 0}}
	p := New(loadedBundle(t, model), testRecords)

	got := p.Predict([]string{"chills"})
	if got.Method != MethodML || len(got.Predictions) != 1 || got.Predictions[0].Disease != "Malaria" {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestPredictMLSkipsNaNBeforeRanking(t *testing.T) {
	model := &stubModel{probs: []float64{0.2, math.NaN(), 0.5, 0.1}}
	p := New(loadedBundle(t, model), testRecords)

	got := p.Predict([]string{"chills"})
	want := []Prediction{
		{Disease: "Migraine", Confidence: 50},
		{Disease: "Flu", Confidence: 20},
		{Disease: "Typhoid", Confidence: 10},
	}
	if got.Method != MethodML || !reflect.DeepEqual(got.Predictions, want) {
		t.Fatalf("Predictions = %v, want %v", got.Predictions, want)
	}
}

func TestPredictMLTiesKeepLabelOrder(t *testing.T) {
	model := &stubModel{probs: []float64{0.25, 0.25, 0.25, 0.25}}
	p := New(loadedBundle(t, model), testRecords)

	got := p.Predict([]string{"cough"})
	var names []string
	for _, pr := range got.Predictions {
		names = append(names, pr.Disease)
	}
	if want := []string{"Flu", "Malaria", "Migraine"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("tie order = %v, want %v", names, want)
	}
}

func TestPredictFallsBackFromML(t *testing.T) {
	tests := []struct {
		name     string
		model    *stubModel
		symptoms []string
	}{
		{name: "no vocabulary match", model: &stubModel{probs: []float64{1, 0, 0, 0}}, symptoms: []string{"skin_rash"}},
		{name: "all zero", model: &stubModel{probs: []float64{0, 0, 0, 0}}, symptoms: []string{"headache"}},
		{name: "model error", model: &stubModel{err: errors.New("boom")}, symptoms: []string{"headache"}},
		{name: "model panic", model: &stubModel{panic: true}, symptoms: []string{"headache"}},
		{name: "wrong width", model: &stubModel{probs: []float64{1}}, symptoms: []string{"headache"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(loadedBundle(t, tt.model), testRecords)
			got := p.Predict(tt.symptoms)
			if got.Method != MethodRuleBased {
				t.Fatalf("Method = %s, want %s", got.Method, MethodRuleBased)
			}
			if len(got.Predictions) == 0 {
				t.Fatalf("expected rule-based predictions")
			}
			if !p.UsedFallback(got) {
				t.Fatalf("UsedFallback should be true")
			}
		})
	}
}

func TestPredictRuleBasedSumsAcrossRows(t *testing.T) {
	p := New(classifier.Absent{}, testRecords)

	got := p.Predict([]string{"high_fever", "chills", "headache"})
	want := Result{Method: MethodRuleBased, Predictions: []Prediction{
		{Disease: "Malaria", Confidence: RuleBasedConfidence},
		{Disease: "Flu", Confidence: RuleBasedConfidence},
		{Disease: "Migraine", Confidence: RuleBasedConfidence},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Predict = %#v, want %#v", got, want)
	}
	if p.UsedFallback(got) {
		t.Fatalf("UsedFallback should be false without a bundle")
	}
}

func TestPredictRuleBasedNoMatch(t *testing.T) {
	p := New(nil, testRecords)
	got := p.Predict([]string{"nothing_known"})
	if got.Method != MethodRuleBased || len(got.Predictions) != 0 {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	p := New(classifier.Absent{}, testRecords)
	symptoms := []string{"headache", "high_fever"}

	first := p.Predict(symptoms)
	for i := 0; i < 20; i++ {
		if got := p.Predict(symptoms); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %#v, want %#v", i, got, first)
		}
	}
	for i := 1; i < len(first.Predictions); i++ {
		if first.Predictions[i].Confidence > first.Predictions[i-1].Confidence {
			t.Fatalf("predictions not sorted: %#v", first.Predictions)
		}
	}
	if len(first.Predictions) > MaxPredictions {
		t.Fatalf("too many predictions: %d", len(first.Predictions))
	}
}
