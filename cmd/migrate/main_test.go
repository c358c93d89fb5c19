package main

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"triage-backend/internal/catalog"
)

type staticSource struct {
	tables catalog.Tables
	err    error
}

func (s staticSource) Severity(context.Context) (map[string]int, error) {
	return s.tables.Severity, s.err
}

func (s staticSource) Descriptions(context.Context) (map[string]string, error) {
	return s.tables.Descriptions, nil
}

func (s staticSource) Precautions(context.Context) (map[string][]string, error) {
	return s.tables.Precautions, nil
}

func (s staticSource) Records(context.Context) ([]catalog.Record, error) {
	return s.tables.Records, nil
}

func TestImportTablesWritesInTransaction(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM disease_symptoms")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM disease_precautions")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM disease_descriptions")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM symptom_severity")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO symptom_severity")).WithArgs("cough", 4).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	src := staticSource{tables: catalog.Tables{Severity: map[string]int{"cough": 4}}}
	if err := importTables(context.Background(), sqlDB, src); err != nil {
		t.Fatalf("importTables: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestImportTablesStopsOnReadError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer sqlDB.Close()

	boom := errors.New("missing file")
	if err := importTables(context.Background(), sqlDB, staticSource{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database calls: %v", err)
	}
}
