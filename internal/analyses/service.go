package analyses

import (
	"context"
	"errors"
	"sort"
	"time"

	"triage-backend/internal/catalog"
	"triage-backend/internal/classifier"
	"triage-backend/internal/predict"
	"triage-backend/internal/shared/metrics"
	"triage-backend/internal/symptoms"
	"triage-backend/internal/triage"
)

var (
	// ErrNoSymptoms means the text contained no known symptom phrase.
	ErrNoSymptoms = errors.New("no symptoms detected")
	// ErrNotFound means no reference text exists for a disease.
	ErrNotFound = errors.New("not found")
)

// Service runs the extract, predict and triage pipeline. All fields are
// read-only after construction.
type Service struct {
	Catalog    *catalog.Catalog
	Bundle     classifier.State
	Extractor  *symptoms.Extractor
	Predictor  *predict.Predictor
	Vocabulary []string
}

// NewService wires the pipeline. The known vocabulary is the bundle's when a
// classifier is loaded, else the co-occurrence vocabulary.
func NewService(c *catalog.Catalog, bundle classifier.State, synonyms map[string]string) *Service {
	if c == nil {
		c = catalog.Empty()
	}
	if bundle == nil {
		bundle = classifier.Absent{Reason: classifier.ErrNoBundle}
	}
	vocabulary := c.Vocabulary()
	if loaded, ok := bundle.(*classifier.Loaded); ok {
		vocabulary = sortedCopy(loaded.Vocabulary)
	}
	return &Service{
		Catalog:    c,
		Bundle:     bundle,
		Extractor:  symptoms.NewExtractor(synonyms, vocabulary),
		Predictor:  predict.New(bundle, c.Records()),
		Vocabulary: vocabulary,
	}
}

// Analyze runs the full pipeline on free text. It returns ErrNoSymptoms when
// extraction finds nothing; the predictor is not invoked in that case.
func (s *Service) Analyze(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	found := s.Extractor.Extract(text)
	if len(found) == 0 {
		metrics.IncNoSymptoms()
		return Result{}, ErrNoSymptoms
	}

	res := s.Predictor.Predict(found)
	if s.Predictor.UsedFallback(res) {
		metrics.IncMLFallback()
	}
	score := triage.Score(s.Catalog, found)

	out := Result{
		Success:           true,
		InputText:         text,
		ExtractedSymptoms: found,
		SeverityScore:     score,
		TriageLevel:       triage.LevelFor(score, res.Predictions),
		PredictionMethod:  string(res.Method),
		Predictions:       triage.Enrich(s.Catalog, res.Predictions),
	}

	metrics.IncAnalysis(out.PredictionMethod)
	metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	return out, nil
}

// Health reports whether the classifier is loaded and the vocabulary size.
func (s *Service) Health() Health {
	return Health{
		Status:         "online",
		MLModelLoaded:  classifier.IsLoaded(s.Bundle),
		SymptomsDBSize: len(s.Vocabulary),
	}
}

// Symptoms returns the known vocabulary in sorted order.
func (s *Service) Symptoms() []string {
	return append([]string(nil), s.Vocabulary...)
}

// Disease returns the description and precautions for an exact disease name.
func (s *Service) Disease(name string) (DiseaseInfo, error) {
	desc, hasDesc := s.Catalog.Description(name)
	precautions := s.Catalog.Precautions(name)
	if !hasDesc && len(precautions) == 0 {
		return DiseaseInfo{}, ErrNotFound
	}
	if precautions == nil {
		precautions = []string{}
	}
	return DiseaseInfo{Disease: name, Description: desc, Precautions: precautions}, nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
