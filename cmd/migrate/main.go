package main

// Run database migrations and load reference data:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate import --dir ./data

import (
	"context"
	"database/sql"
	"os"

	"github.com/spf13/cobra"

	"triage-backend/internal/bootstrap"
	"triage-backend/internal/catalog"
	"triage-backend/internal/shared/config"
	"triage-backend/internal/shared/storage/db"
	"triage-backend/internal/shared/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the SQL reference tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, cfg config.Config, sqlDB *sql.DB) error {
				return db.RunMigrations(ctx, sqlDB, cfg.DatabaseURL)
			})
		},
	}

	var dir string
	imp := &cobra.Command{
		Use:   "import",
		Short: "Replace the reference tables with the CSV files in --dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, cfg config.Config, sqlDB *sql.DB) error {
				if dir == "" {
					dir = cfg.DataDir
				}
				if err := db.RunMigrations(ctx, sqlDB, cfg.DatabaseURL); err != nil {
					return err
				}
				return importTables(ctx, sqlDB, bootstrap.LocalSourceAt(cfg, dir))
			})
		},
	}
	imp.Flags().StringVar(&dir, "dir", "", "directory holding the CSV tables (default DATA_DIR)")

	root.AddCommand(up, imp)
	return root
}

func withDB(ctx context.Context, fn func(context.Context, config.Config, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"error": err.Error()})
		return err
	}
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultOptions().WithOverrides(cfg.DBMaxOpenConns, cfg.DBPingTimeout))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		return err
	}
	defer sqlDB.Close()

	if err := fn(ctx, cfg, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

func importTables(ctx context.Context, sqlDB *sql.DB, src catalog.Source) error {
	tables, err := catalog.ReadAll(ctx, src)
	if err != nil {
		return err
	}
	if err := catalog.Import(ctx, sqlDB, tables); err != nil {
		return err
	}
	telemetry.Info("migrate.imported", map[string]any{
		"weights":      len(tables.Severity),
		"descriptions": len(tables.Descriptions),
		"precautions":  len(tables.Precautions),
		"records":      len(tables.Records),
	})
	return nil
}
