// Package classifier loads the optional pre-trained disease classifier. A
// bundle is either Loaded, carrying its fixed vocabulary, inference model and
// label decoder, or Absent with the reason it could not be loaded.
package classifier

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoBundle is the Absent reason when no bundle file exists.
var ErrNoBundle = errors.New("classifier bundle not found")

// Model produces one probability per label for a binary presence vector laid
// out in vocabulary order.
type Model interface {
	PredictProba(features []float32) ([]float64, error)
}

// State is the classifier bundle as seen by the predictor. Exactly one of
// Loaded or Absent implements it.
type State interface {
	isState()
}

// Loaded is a usable bundle.
type Loaded struct {
	Vocabulary []string
	Model      Model
	Labels     []string

	index map[string]int
}

// Absent means the service runs in fallback-only mode.
type Absent struct {
	Reason error
}

func (*Loaded) isState() {}
func (Absent) isState()  {}

// NewLoaded validates the vocabulary and labels and returns a Loaded bundle.
func NewLoaded(vocabulary []string, model Model, labels []string) (*Loaded, error) {
	if model == nil {
		return nil, fmt.Errorf("classifier: model is nil")
	}
	if err := checkUnique("vocabulary", vocabulary); err != nil {
		return nil, err
	}
	if err := checkUnique("labels", labels); err != nil {
		return nil, err
	}
	index := make(map[string]int, len(vocabulary))
	for i, s := range vocabulary {
		index[s] = i
	}
	return &Loaded{
		Vocabulary: append([]string(nil), vocabulary...),
		Model:      model,
		Labels:     append([]string(nil), labels...),
		index:      index,
	}, nil
}

// Index returns the vector position of symptom, if it is in the vocabulary.
func (l *Loaded) Index(symptom string) (int, bool) {
	i, ok := l.index[symptom]
	return i, ok
}

// IsLoaded reports whether s carries a usable bundle.
func IsLoaded(s State) bool {
	_, ok := s.(*Loaded)
	return ok
}

// Release frees the model held by a Loaded bundle when it owns native
// resources. Absent bundles and plain models are a no-op.
func Release(s State) error {
	l, ok := s.(*Loaded)
	if !ok {
		return nil
	}
	if c, ok := l.Model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func checkUnique(field string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("classifier: %s is empty", field)
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			return fmt.Errorf("classifier: %s contains an empty entry", field)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("classifier: %s contains duplicate %q", field, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}
