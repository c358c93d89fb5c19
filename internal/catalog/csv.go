package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"triage-backend/internal/shared/storage/object"
	"triage-backend/internal/shared/telemetry"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Files names the four CSV tables inside an object store.
type Files struct {
	Severity     string
	Descriptions string
	Precautions  string
	Dataset      string
}

// DefaultFiles returns the file names the reference data ships with.
func DefaultFiles() Files {
	return Files{
		Severity:     "Symptomseverity.csv",
		Descriptions: "symptom_Description.csv",
		Precautions:  "symptom_precaution.csv",
		Dataset:      "dataset.csv",
	}
}

// CSVSource reads the reference tables from CSV files in an object store.
type CSVSource struct {
	Store object.ObjectStore
	Files Files
}

// NewCSVSource constructs a CSVSource.
func NewCSVSource(store object.ObjectStore, files Files) *CSVSource {
	return &CSVSource{Store: store, Files: files}
}

// Severity reads the Symptom,weight table. Rows with an unparseable weight are skipped.
func (s *CSVSource) Severity(ctx context.Context) (map[string]int, error) {
	header, rows, err := s.read(ctx, s.Files.Severity)
	if err != nil {
		return nil, err
	}
	symCol, err := column(header, "Symptom")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Files.Severity, err)
	}
	weightCol, err := column(header, "weight")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Files.Severity, err)
	}

	out := make(map[string]int, len(rows))
	for i, row := range rows {
		sym := cell(row, symCol)
		if sym == "" {
			continue
		}
		w, err := strconv.Atoi(cell(row, weightCol))
		if err != nil {
			telemetry.Warn("catalog.row_skipped", map[string]any{
				"file":  s.Files.Severity,
				"row":   i + 2,
				"error": err.Error(),
			})
			continue
		}
		out[sym] = w
	}
	return out, nil
}

// Descriptions reads the Disease,Description table. The first row per disease wins.
func (s *CSVSource) Descriptions(ctx context.Context) (map[string]string, error) {
	header, rows, err := s.read(ctx, s.Files.Descriptions)
	if err != nil {
		return nil, err
	}
	diseaseCol, err := column(header, "Disease")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Files.Descriptions, err)
	}
	descCol, err := column(header, "Description")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Files.Descriptions, err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		disease := cell(row, diseaseCol)
		if disease == "" {
			continue
		}
		if _, ok := out[disease]; ok {
			continue
		}
		out[disease] = cell(row, descCol)
	}
	return out, nil
}

// Precautions reads the Disease,Precaution_1..Precaution_4 table. Empty slots
// are skipped and order is kept. The first row per disease wins.
func (s *CSVSource) Precautions(ctx context.Context) (map[string][]string, error) {
	header, rows, err := s.read(ctx, s.Files.Precautions)
	if err != nil {
		return nil, err
	}
	diseaseCol, err := column(header, "Disease")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Files.Precautions, err)
	}
	slots := make([]int, 0, MaxPrecautions)
	for i := 1; i <= MaxPrecautions; i++ {
		if col, err := column(header, fmt.Sprintf("Precaution_%d", i)); err == nil {
			slots = append(slots, col)
		}
	}

	out := make(map[string][]string, len(rows))
	for _, row := range rows {
		disease := cell(row, diseaseCol)
		if disease == "" {
			continue
		}
		if _, ok := out[disease]; ok {
			continue
		}
		list := make([]string, 0, len(slots))
		for _, col := range slots {
			if p := cell(row, col); p != "" {
				list = append(list, p)
			}
		}
		out[disease] = list
	}
	return out, nil
}

// Records reads the co-occurrence table: a Disease column plus every column
// whose header contains "Symptom".
func (s *CSVSource) Records(ctx context.Context) ([]Record, error) {
	header, rows, err := s.read(ctx, s.Files.Dataset)
	if err != nil {
		return nil, err
	}
	diseaseCol, err := column(header, "Disease")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Files.Dataset, err)
	}
	var symptomCols []int
	for i, name := range header {
		if strings.Contains(name, "Symptom") {
			symptomCols = append(symptomCols, i)
		}
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		disease := cell(row, diseaseCol)
		if disease == "" {
			continue
		}
		rec := Record{Disease: disease}
		for _, col := range symptomCols {
			if sym := cell(row, col); sym != "" {
				rec.Symptoms = append(rec.Symptoms, sym)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *CSVSource) read(ctx context.Context, name string) ([]string, [][]string, error) {
	if s.Store == nil {
		return nil, nil, fmt.Errorf("read %s: no object store configured", name)
	}
	rc, err := s.Store.Open(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer rc.Close()
	header, rows, err := parseCSV(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", s.Store.Location(name), err)
	}
	return header, rows, nil
}

func parseCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("parse csv: empty file")
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}
	return header, records[1:], nil
}

func column(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q", ErrMissingColumn, name)
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

var _ Source = (*CSVSource)(nil)
