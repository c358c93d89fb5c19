package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	_ "modernc.org/sqlite"             // register sqlite as database/sql driver

	"triage-backend/internal/shared/telemetry"
)

// Options sizes the pool. The reference tables are read once at startup or
// written once by the importer, so the pool stays small either way.
type Options struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// DefaultOptions returns the pool used by the API and the migrate CLI.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    2,
		ConnMaxLifetime: 15 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// WithOverrides applies the positive values from configuration.
func (o Options) WithOverrides(maxOpen int, pingTimeout time.Duration) Options {
	if maxOpen > 0 {
		o.MaxOpenConns = maxOpen
	}
	if pingTimeout > 0 {
		o.PingTimeout = pingTimeout
	}
	return o
}

// DriverFor maps a database URL to its database/sql driver name, the DSN to
// hand that driver, and the goose dialect.
//
//	postgres://..., postgresql://...  -> pgx, postgres
//	sqlite://path, file:path, *.db    -> sqlite, sqlite3
func DriverFor(databaseURL string) (driver, dialect string, err error) {
	driver, _, dialect, err = resolve(databaseURL)
	return driver, dialect, err
}

func resolve(databaseURL string) (driver, dsn, dialect string, err error) {
	raw := strings.TrimSpace(databaseURL)
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return "", "", "", fmt.Errorf("DATABASE_URL is empty")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "pgx", raw, "postgres", nil
	case strings.HasPrefix(lower, "sqlite://"):
		return "sqlite", raw[len("sqlite://"):], "sqlite3", nil
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return "sqlite", raw, "sqlite3", nil
	default:
		return "", "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %q", raw)
	}
}

// Connect opens the database named by databaseURL and pings it within
// opts.PingTimeout.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	driver, dsn, _, err := resolve(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := openDB(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", map[string]any{
		"driver":   driver,
		"max_open": db.Stats().MaxOpenConnections,
	})
	return db, nil
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 2
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
}
