package config

import (
	"testing"
	"time"
)

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_SOURCE", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DataSource != DataSourceLocal {
		t.Fatalf("expected local data source, got %s", cfg.DataSource)
	}
	if cfg.SeverityFile != "Symptomseverity.csv" {
		t.Fatalf("unexpected severity file %q", cfg.SeverityFile)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("expected 1MB body limit, got %d", cfg.MaxBodyBytes)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if len(cfg.CORSAllowOrigin) != 1 || cfg.CORSAllowOrigin[0] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowOrigin)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "prod")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("DB_PING_TIMEOUT", "750ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env production, got %s", cfg.Env)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowOrigin)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.RateLimitRPS)
	}
	if cfg.DBMaxOpenConns != 4 || cfg.DBPingTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected db settings %d %s", cfg.DBMaxOpenConns, cfg.DBPingTimeout)
	}
}

func TestLoadRequiresBucketForS3(t *testing.T) {
	t.Setenv("DATA_SOURCE", "s3")
	t.Setenv("S3_BUCKET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when S3_BUCKET is missing")
	}
}

func TestLoadRequiresDatabaseURLForSQL(t *testing.T) {
	t.Setenv("DATA_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestNormalizeDataSource(t *testing.T) {
	tests := map[string]string{
		"":         DataSourceLocal,
		"LOCAL":    DataSourceLocal,
		" s3 ":     DataSourceS3,
		"sqlite":   DataSourceSQL,
		"postgres": DataSourceSQL,
		"bogus":    DataSourceLocal,
	}
	for in, want := range tests {
		if got := normalizeDataSource(in); got != want {
			t.Fatalf("normalizeDataSource(%q) = %q, want %q", in, got, want)
		}
	}
}
