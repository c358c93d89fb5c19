package catalog

import (
	"reflect"
	"testing"
)

func TestWeightNormalizesKeys(t *testing.T) {
	c := New(Tables{Severity: map[string]int{"high_fever": 7, " Skin_Rash ": 3}})

	tests := []struct {
		symptom string
		want    int
	}{
		{"high_fever", 7},
		{"high fever", 7},
		{"HIGH_FEVER", 7},
		{"skin_rash", 3},
		{"unknown_symptom", DefaultWeight},
	}
	for _, tt := range tests {
		if got := c.Weight(tt.symptom); got != tt.want {
			t.Errorf("Weight(%q) = %d, want %d", tt.symptom, got, tt.want)
		}
	}
}

func TestVocabularyIsSortedAndDeduplicated(t *testing.T) {
	c := New(Tables{Records: []Record{
		{Disease: "Flu", Symptoms: []string{"headache", "cough"}},
		{Disease: "Flu", Symptoms: []string{"cough", "fatigue"}},
	}})

	want := []string{"cough", "fatigue", "headache"}
	if got := c.Vocabulary(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Vocabulary = %v, want %v", got, want)
	}
}

func TestPrecautionsCappedAndCopied(t *testing.T) {
	c := New(Tables{Precautions: map[string][]string{
		"Flu": {"a", "b", "c", "d", "e"},
	}})

	got := c.Precautions("Flu")
	if len(got) != MaxPrecautions {
		t.Fatalf("len = %d, want %d", len(got), MaxPrecautions)
	}
	got[0] = "mutated"
	if c.Precautions("Flu")[0] != "a" {
		t.Fatalf("catalog exposed internal slice")
	}
	if c.Precautions("Unknown") != nil {
		t.Fatalf("expected nil for unknown disease")
	}
}

func TestEmptyCatalog(t *testing.T) {
	c := Empty()
	if len(c.Vocabulary()) != 0 || len(c.Records()) != 0 {
		t.Fatalf("expected empty catalog")
	}
	if c.Weight("anything") != DefaultWeight {
		t.Fatalf("expected default weight")
	}
}

func TestWeightCollidingKeysResolveDeterministically(t *testing.T) {
	severity := map[string]int{"high fever": 4, "high_fever": 7, "cough": 2}
	for i := 0; i < 50; i++ {
		if got := New(Tables{Severity: severity}).Weight("high_fever"); got != 7 {
			t.Fatalf("run %d: Weight(high_fever) = %d, want 7", i, got)
		}
	}
}
