package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"triage-backend/internal/analyses"
	"triage-backend/internal/catalog"
	"triage-backend/internal/symptoms"
)

func testService() *analyses.Service {
	c := catalog.New(catalog.Tables{
		Severity: map[string]int{"cough": 4},
		Records:  []catalog.Record{{Disease: "Bronchitis", Symptoms: []string{"cough"}}},
	})
	return analyses.NewService(c, nil, symptoms.DefaultSynonyms)
}

func TestRunAnalyzePrintsResult(t *testing.T) {
	var out bytes.Buffer
	if err := runAnalyze(context.Background(), testService(), "dry cough", &out); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["success"] != true || got["severity_score"] != float64(4) || got["triage_level"] != "GREEN" {
		t.Fatalf("unexpected output %s", out.String())
	}
}

func TestRunAnalyzeNoSymptoms(t *testing.T) {
	var out bytes.Buffer
	if err := runAnalyze(context.Background(), testService(), "all good", &out); err != nil {
		t.Fatalf("runAnalyze: %v", err)
	}
	var got analyses.NoSymptoms
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Success || got.Message != analyses.NoSymptomsMessage {
		t.Fatalf("unexpected output %s", out.String())
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "analyze"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}
