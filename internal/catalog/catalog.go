// Package catalog holds the read-only reference tables the triage pipeline
// consults: symptom severity weights, disease descriptions, disease
// precautions and the raw disease/symptom co-occurrence records.
package catalog

import (
	"context"
	"sort"
	"strings"

	"triage-backend/internal/shared/telemetry"
)

// DefaultWeight is the severity weight of a symptom absent from the severity table.
const DefaultWeight = 1

// MaxPrecautions caps the precautions kept per disease.
const MaxPrecautions = 4

// Record is one row of the co-occurrence table: a disease and the canonical
// symptoms listed with it. A disease may appear in many records.
type Record struct {
	Disease  string
	Symptoms []string
}

// Tables is the raw content of the four reference tables.
type Tables struct {
	Severity     map[string]int
	Descriptions map[string]string
	Precautions  map[string][]string
	Records      []Record
}

// Source reads the reference tables from some backing store.
type Source interface {
	Severity(ctx context.Context) (map[string]int, error)
	Descriptions(ctx context.Context) (map[string]string, error)
	Precautions(ctx context.Context) (map[string][]string, error)
	Records(ctx context.Context) ([]Record, error)
}

// Catalog is the immutable in-memory view of the reference tables. It is
// built once at startup and safe for concurrent reads.
type Catalog struct {
	weights      map[string]int
	descriptions map[string]string
	precautions  map[string][]string
	records      []Record
	vocabulary   []string
}

// New builds a Catalog from raw tables, normalizing severity keys and
// deriving the co-occurrence vocabulary.
func New(t Tables) *Catalog {
	c := &Catalog{
		weights:      make(map[string]int, len(t.Severity)),
		descriptions: make(map[string]string, len(t.Descriptions)),
		precautions:  make(map[string][]string, len(t.Precautions)),
		records:      make([]Record, 0, len(t.Records)),
	}
	// Sorted so that "high_fever" and "high fever" collapse the same way every run.
	for _, sym := range sortedKeys(t.Severity) {
		c.weights[weightKey(sym)] = t.Severity[sym]
	}
	for disease, desc := range t.Descriptions {
		c.descriptions[disease] = desc
	}
	for disease, list := range t.Precautions {
		if len(list) > MaxPrecautions {
			list = list[:MaxPrecautions]
		}
		c.precautions[disease] = append([]string(nil), list...)
	}

	seen := make(map[string]struct{})
	for _, r := range t.Records {
		c.records = append(c.records, Record{
			Disease:  r.Disease,
			Symptoms: append([]string(nil), r.Symptoms...),
		})
		for _, s := range r.Symptoms {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			c.vocabulary = append(c.vocabulary, s)
		}
	}
	sort.Strings(c.vocabulary)
	return c
}

// Empty returns a catalog with no reference data.
func Empty() *Catalog {
	return New(Tables{})
}

// Load reads every table from src. A table that cannot be read is logged and
// left empty so the service keeps running in a degraded mode.
func Load(ctx context.Context, src Source, sourceName string) *Catalog {
	var t Tables
	var err error

	if t.Severity, err = src.Severity(ctx); err != nil {
		logUnavailable(sourceName, "severity", err)
	}
	if t.Descriptions, err = src.Descriptions(ctx); err != nil {
		logUnavailable(sourceName, "descriptions", err)
	}
	if t.Precautions, err = src.Precautions(ctx); err != nil {
		logUnavailable(sourceName, "precautions", err)
	}
	if t.Records, err = src.Records(ctx); err != nil {
		logUnavailable(sourceName, "records", err)
	}

	c := New(t)
	telemetry.Info("catalog.loaded", map[string]any{
		"source":       sourceName,
		"weights":      len(c.weights),
		"descriptions": len(c.descriptions),
		"precautions":  len(c.precautions),
		"records":      len(c.records),
		"vocabulary":   len(c.vocabulary),
	})
	return c
}

// ReadAll reads every table from src and fails on the first error.
func ReadAll(ctx context.Context, src Source) (Tables, error) {
	var t Tables
	var err error
	if t.Severity, err = src.Severity(ctx); err != nil {
		return Tables{}, err
	}
	if t.Descriptions, err = src.Descriptions(ctx); err != nil {
		return Tables{}, err
	}
	if t.Precautions, err = src.Precautions(ctx); err != nil {
		return Tables{}, err
	}
	if t.Records, err = src.Records(ctx); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// Weight returns the severity weight of a canonical symptom, or DefaultWeight
// when the symptom is not in the severity table.
func (c *Catalog) Weight(symptom string) int {
	if w, ok := c.weights[weightKey(symptom)]; ok {
		return w
	}
	return DefaultWeight
}

// Description returns the description stored for the exact disease name.
func (c *Catalog) Description(disease string) (string, bool) {
	desc, ok := c.descriptions[disease]
	return desc, ok
}

// Precautions returns a copy of the ordered precautions for the exact disease name.
func (c *Catalog) Precautions(disease string) []string {
	list, ok := c.precautions[disease]
	if !ok {
		return nil
	}
	return append([]string(nil), list...)
}

// Records returns the co-occurrence records in table order. Callers must not
// modify the returned slice.
func (c *Catalog) Records() []Record {
	return c.records
}

// Vocabulary returns the sorted set of symptom tokens found in the
// co-occurrence table.
func (c *Catalog) Vocabulary() []string {
	return append([]string(nil), c.vocabulary...)
}

func weightKey(symptom string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(symptom)), "_", " ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func logUnavailable(sourceName, table string, err error) {
	telemetry.Warn("catalog.table_unavailable", map[string]any{
		"source": sourceName,
		"table":  table,
		"error":  err.Error(),
	})
}
