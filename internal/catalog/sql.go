package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLSource reads the reference tables from a database created by the
// embedded migrations. It works with both the pgx and sqlite drivers.
type SQLSource struct {
	DB *sql.DB
}

// NewSQLSource constructs a SQLSource.
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{DB: db}
}

// Severity returns symptom weights.
func (s *SQLSource) Severity(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT symptom, weight FROM symptom_severity`)
	if err != nil {
		return nil, fmt.Errorf("query symptom_severity: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var sym string
		var w int
		if err := rows.Scan(&sym, &w); err != nil {
			return nil, fmt.Errorf("scan symptom_severity: %w", err)
		}
		out[sym] = w
	}
	return out, rows.Err()
}

// Descriptions returns disease descriptions.
func (s *SQLSource) Descriptions(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT disease, description FROM disease_descriptions`)
	if err != nil {
		return nil, fmt.Errorf("query disease_descriptions: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var disease, desc string
		if err := rows.Scan(&disease, &desc); err != nil {
			return nil, fmt.Errorf("scan disease_descriptions: %w", err)
		}
		out[disease] = desc
	}
	return out, rows.Err()
}

// Precautions returns precautions per disease in stored position order.
func (s *SQLSource) Precautions(ctx context.Context) (map[string][]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT disease, precaution
FROM disease_precautions
ORDER BY disease, position`)
	if err != nil {
		return nil, fmt.Errorf("query disease_precautions: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var disease, p string
		if err := rows.Scan(&disease, &p); err != nil {
			return nil, fmt.Errorf("scan disease_precautions: %w", err)
		}
		out[disease] = append(out[disease], p)
	}
	return out, rows.Err()
}

// Records returns co-occurrence records in record_id order.
func (s *SQLSource) Records(ctx context.Context) ([]Record, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT record_id, disease, symptom
FROM disease_symptoms
ORDER BY record_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query disease_symptoms: %w", err)
	}
	defer rows.Close()

	var out []Record
	lastID := int64(-1)
	for rows.Next() {
		var id int64
		var disease, sym string
		if err := rows.Scan(&id, &disease, &sym); err != nil {
			return nil, fmt.Errorf("scan disease_symptoms: %w", err)
		}
		if id != lastID || len(out) == 0 {
			out = append(out, Record{Disease: disease})
			lastID = id
		}
		out[len(out)-1].Symptoms = append(out[len(out)-1].Symptoms, sym)
	}
	return out, rows.Err()
}

// Import replaces the contents of the reference tables with t in a single
// transaction. Records without symptoms are not representable and are dropped.
func Import(ctx context.Context, db *sql.DB, t Tables) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"disease_symptoms", "disease_precautions", "disease_descriptions", "symptom_severity"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, sym := range sortedKeys(t.Severity) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO symptom_severity (symptom, weight) VALUES ($1, $2)`,
			sym, t.Severity[sym]); err != nil {
			return fmt.Errorf("insert symptom_severity %q: %w", sym, err)
		}
	}
	for _, disease := range sortedKeys(t.Descriptions) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO disease_descriptions (disease, description) VALUES ($1, $2)`,
			disease, t.Descriptions[disease]); err != nil {
			return fmt.Errorf("insert disease_descriptions %q: %w", disease, err)
		}
	}
	for _, disease := range sortedKeys(t.Precautions) {
		for i, p := range t.Precautions[disease] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO disease_precautions (disease, position, precaution) VALUES ($1, $2, $3)`,
				disease, i+1, p); err != nil {
				return fmt.Errorf("insert disease_precautions %q: %w", disease, err)
			}
		}
	}
	for id, rec := range t.Records {
		for pos, sym := range rec.Symptoms {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO disease_symptoms (record_id, position, disease, symptom) VALUES ($1, $2, $3, $4)`,
				id+1, pos+1, rec.Disease, sym); err != nil {
				return fmt.Errorf("insert disease_symptoms record %d: %w", id+1, err)
			}
		}
	}

	return tx.Commit()
}

var _ Source = (*SQLSource)(nil)
