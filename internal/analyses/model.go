package analyses

import "triage-backend/internal/triage"

// NoSymptomsMessage is returned when extraction finds nothing.
const NoSymptomsMessage = "No symptoms detected. Please describe your condition clearly."

// Request is the /analyze body.
type Request struct {
	Symptoms string `json:"symptoms"`
}

// Result is a completed analysis.
type Result struct {
	Success           bool              `json:"success"`
	InputText         string            `json:"input_text"`
	ExtractedSymptoms []string          `json:"extracted_symptoms"`
	SeverityScore     int               `json:"severity_score"`
	TriageLevel       triage.Level      `json:"triage_level"`
	PredictionMethod  string            `json:"prediction_method"`
	Predictions       []triage.Enriched `json:"predictions"`
}

// NoSymptoms is the user-facing response when extraction finds nothing.
type NoSymptoms struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Health reports process readiness.
type Health struct {
	Status         string `json:"status"`
	MLModelLoaded  bool   `json:"ml_model_loaded"`
	SymptomsDBSize int    `json:"symptoms_db_size"`
}

// DiseaseInfo is the reference text for one disease.
type DiseaseInfo struct {
	Disease     string   `json:"disease"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}
