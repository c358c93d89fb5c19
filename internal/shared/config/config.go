package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Data sources for the reference tables.
const (
	DataSourceLocal = "local"
	DataSourceS3    = "s3"
	DataSourceSQL   = "sql"
)

// Config holds application configuration.
type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	LogLevel        string   `mapstructure:"LOG_LEVEL"`
	LogFormat       string   `mapstructure:"LOG_FORMAT"`
	CORSAllowOrigin []string `mapstructure:"-"`

	DataSource      string `mapstructure:"DATA_SOURCE"`
	DataDir         string `mapstructure:"DATA_DIR"`
	SeverityFile    string `mapstructure:"SEVERITY_FILE"`
	DescriptionFile string `mapstructure:"DESCRIPTION_FILE"`
	PrecautionFile  string `mapstructure:"PRECAUTION_FILE"`
	DatasetFile     string `mapstructure:"DATASET_FILE"`

	AWSRegion string `mapstructure:"AWS_REGION"`
	S3Bucket  string `mapstructure:"S3_BUCKET"`
	S3Prefix  string `mapstructure:"S3_PREFIX"`

	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBPingTimeout  time.Duration `mapstructure:"DB_PING_TIMEOUT"`

	ModelBundle  string `mapstructure:"MODEL_BUNDLE"`
	ONNXLibPath  string `mapstructure:"ONNXRUNTIME_LIB"`
	SynonymsFile string `mapstructure:"SYNONYMS_FILE"`

	MaxBodyBytes   int64   `mapstructure:"MAX_BODY_BYTES"`
	MaxUploadBytes int64   `mapstructure:"UPLOAD_MAX_BYTES"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOW_ORIGINS",
	"DATA_SOURCE", "DATA_DIR", "SEVERITY_FILE", "DESCRIPTION_FILE", "PRECAUTION_FILE", "DATASET_FILE",
	"AWS_REGION", "S3_BUCKET", "S3_PREFIX",
	"DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_PING_TIMEOUT",
	"MODEL_BUNDLE", "ONNXRUNTIME_LIB", "SYNONYMS_FILE",
	"MAX_BODY_BYTES", "UPLOAD_MAX_BYTES", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// Load reads configuration from .env files and environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("DATA_SOURCE", DataSourceLocal)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SEVERITY_FILE", "Symptomseverity.csv")
	v.SetDefault("DESCRIPTION_FILE", "symptom_Description.csv")
	v.SetDefault("PRECAUTION_FILE", "symptom_precaution.csv")
	v.SetDefault("DATASET_FILE", "dataset.csv")
	v.SetDefault("MODEL_BUNDLE", "./data/disease_model.json")
	v.SetDefault("MAX_BODY_BYTES", 1<<20)
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	// Bind env vars explicitly so Unmarshal picks up keys without defaults.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.DataSource = normalizeDataSource(cfg.DataSource)
	cfg.CORSAllowOrigin = splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected data source has what it needs.
func (c Config) Validate() error {
	switch c.DataSource {
	case DataSourceS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return fmt.Errorf("S3_BUCKET is required when DATA_SOURCE=s3")
		}
	case DataSourceSQL:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=sql")
		}
	}
	if c.DBMaxOpenConns < 0 || c.DBPingTimeout < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS and DB_PING_TIMEOUT must not be negative")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must not be negative, got %d", c.MaxUploadBytes)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeDataSource(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case DataSourceS3:
		return DataSourceS3
	case DataSourceSQL, "postgres", "sqlite":
		return DataSourceSQL
	default:
		return DataSourceLocal
	}
}
