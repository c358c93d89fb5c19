package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/analyses"
	"triage-backend/internal/catalog"
	"triage-backend/internal/classifier"
	"triage-backend/internal/shared/config"
	"triage-backend/internal/shared/server"
	"triage-backend/internal/shared/storage/db"
	"triage-backend/internal/shared/storage/object"
	localstore "triage-backend/internal/shared/storage/object/local"
	s3store "triage-backend/internal/shared/storage/object/s3"
	"triage-backend/internal/shared/telemetry"
	"triage-backend/internal/symptoms"
)

// App holds the process-lifetime dependencies. Everything is read-only once
// Build returns.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	Catalog *catalog.Catalog
	Bundle  classifier.State
	Service *analyses.Service
}

// Options overrides the defaults Build uses. Zero values keep the defaults.
type Options struct {
	// ModelOpener replaces the ONNX Runtime opener.
	ModelOpener classifier.ModelOpener
}

// Build loads the reference tables, the optional classifier bundle and the
// synonym dictionary, then wires the router. Missing reference data degrades
// the service; only configuration errors fail the build.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opener := opts.ModelOpener
	if opener == nil {
		opener = classifier.ONNXOpener(cfg.ONNXLibPath)
	}
	bundle := classifier.Load(cfg.ModelBundle, opener)

	synonyms, err := symptoms.LoadSynonyms(cfg.SynonymsFile)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}

	svc := analyses.NewService(cat, bundle, synonyms)
	health := svc.Health()
	telemetry.Info("bootstrap.ready", map[string]any{
		"env":              cfg.Env,
		"data_source":      cfg.DataSource,
		"ml_model_loaded":  health.MLModelLoaded,
		"symptoms_db_size": health.SymptomsDBSize,
	})

	return &App{
		Config:  cfg,
		Router:  server.NewRouter(cfg, svc),
		Catalog: cat,
		Bundle:  bundle,
		Service: svc,
	}, nil
}

// Close releases the classifier session. The router must no longer be serving.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return classifier.Release(a.Bundle)
}

func loadCatalog(ctx context.Context, cfg config.Config) (*catalog.Catalog, error) {
	switch cfg.DataSource {
	case config.DataSourceSQL:
		return loadSQLCatalog(ctx, cfg)
	case config.DataSourceS3:
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		return catalog.Load(ctx, catalog.NewCSVSource(store, Files(cfg)), config.DataSourceS3), nil
	default:
		return catalog.Load(ctx, LocalSource(cfg), config.DataSourceLocal), nil
	}
}

// loadSQLCatalog reads the tables once and closes the pool. A database that
// cannot be reached degrades to an empty catalog in dev and fails elsewhere.
func loadSQLCatalog(ctx context.Context, cfg config.Config) (*catalog.Catalog, error) {
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultOptions().WithOverrides(cfg.DBMaxOpenConns, cfg.DBPingTimeout))
	if err != nil {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.db_unavailable", map[string]any{"error": err.Error()})
			return catalog.Empty(), nil
		}
		return nil, err
	}
	defer sqlDB.Close()
	return catalog.Load(ctx, catalog.NewSQLSource(sqlDB), config.DataSourceSQL), nil
}

// Files maps the configured file names onto catalog.Files.
func Files(cfg config.Config) catalog.Files {
	files := catalog.DefaultFiles()
	if v := strings.TrimSpace(cfg.SeverityFile); v != "" {
		files.Severity = v
	}
	if v := strings.TrimSpace(cfg.DescriptionFile); v != "" {
		files.Descriptions = v
	}
	if v := strings.TrimSpace(cfg.PrecautionFile); v != "" {
		files.Precautions = v
	}
	if v := strings.TrimSpace(cfg.DatasetFile); v != "" {
		files.Dataset = v
	}
	return files
}

// LocalSource reads the CSV tables from a directory on disk.
func LocalSource(cfg config.Config) *catalog.CSVSource {
	return LocalSourceAt(cfg, cfg.DataDir)
}

// LocalSourceAt reads the CSV tables from dir using the configured file names.
func LocalSourceAt(cfg config.Config, dir string) *catalog.CSVSource {
	var store object.ObjectStore = localstore.New(dir)
	return catalog.NewCSVSource(store, Files(cfg))
}
