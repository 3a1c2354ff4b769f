// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

var keyPrefixRe = regexp.MustCompile(`^[A-Z]+$`)

// Config holds all configuration parameters for the application.
type Config struct {
	Log       LogConfig
	Generator GeneratorConfig
	Store     StoreConfig
	HTTP      HTTPConfig
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// GeneratorConfig holds activity generator settings.
type GeneratorConfig struct {
	// Seed for the random stream. Zero picks a fresh seed per run.
	Seed      int64
	Days      int
	Engineers int
	KeyPrefix string
}

// StoreConfig selects and configures where run reports are kept.
type StoreConfig struct {
	Backend     string
	Dir         string
	DatabaseURL string
	S3          S3Config
}

// S3Config holds S3 bucket settings. Endpoint is only set for S3-compatible
// services such as LocalStack or MinIO.
type S3Config struct {
	Bucket   string
	Endpoint string
	Region   string
}

// HTTPConfig holds the data feed server settings.
type HTTPConfig struct {
	Addr string
}

// LoadConfig initializes and loads configuration from environment variables.
// A .env file in the working directory is read first when present; variables
// already set in the environment take precedence over it.
func LoadConfig() (*Config, error) {
	loadDotEnv()

	// Initialize Viper for environment variables
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	bindLogEnv(v)
	v.BindEnv("generator.seed", "OPSINTEL_SEED")
	v.BindEnv("generator.days", "OPSINTEL_DAYS")
	v.BindEnv("generator.engineers", "OPSINTEL_ENGINEERS")
	v.BindEnv("generator.key_prefix", "OPSINTEL_KEY_PREFIX")
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("store.dir", "STORE_DIR")
	v.BindEnv("store.database_url", "DATABASE_URL")
	v.BindEnv("store.s3.bucket", "S3_BUCKET_NAME")
	v.BindEnv("store.s3.endpoint", "AWS_ENDPOINT_URL")
	v.BindEnv("store.s3.region", "AWS_DEFAULT_REGION")
	v.BindEnv("http.addr", "HTTP_ADDR")

	v.SetDefault("generator.seed", 0)
	v.SetDefault("generator.days", 90)
	v.SetDefault("generator.engineers", 8)
	v.SetDefault("generator.key_prefix", "PROJ")
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.dir", "data")
	v.SetDefault("store.s3.bucket", "ops-data")
	v.SetDefault("store.s3.region", "us-east-1")
	v.SetDefault("http.addr", ":8501")

	// Numeric keys must parse; a malformed value is an error, never 0.
	var parseErrs []error
	seed, err := cast.ToInt64E(v.Get("generator.seed"))
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("OPSINTEL_SEED: %w", err))
	}
	days, err := cast.ToIntE(v.Get("generator.days"))
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("OPSINTEL_DAYS: %w", err))
	}
	engineers, err := cast.ToIntE(v.Get("generator.engineers"))
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("OPSINTEL_ENGINEERS: %w", err))
	}
	if len(parseErrs) > 0 {
		return nil, fmt.Errorf("invalid generator configuration: %w", errors.Join(parseErrs...))
	}

	config := &Config{
		Log: logConfig(v),
		Generator: GeneratorConfig{
			Seed:      seed,
			Days:      days,
			Engineers: engineers,
			KeyPrefix: v.GetString("generator.key_prefix"),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(v.GetString("store.backend")),
			Dir:         v.GetString("store.dir"),
			DatabaseURL: v.GetString("store.database_url"),
			S3: S3Config{
				Bucket:   v.GetString("store.s3.bucket"),
				Endpoint: v.GetString("store.s3.endpoint"),
				Region:   v.GetString("store.s3.region"),
			},
		},
		HTTP: HTTPConfig{
			Addr: v.GetString("http.addr"),
		},
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	logging.Debug("configuration loaded",
		"store_backend", config.Store.Backend,
		"database_url", logging.MaskSensitive(config.Store.DatabaseURL),
		"days", config.Generator.Days,
		"engineers", config.Generator.Engineers)

	return config, nil
}

// LoadLogConfig reads LOG_LEVEL and LOG_FORMAT from the environment or a
// .env file, without validating them.
func LoadLogConfig() LogConfig {
	loadDotEnv()

	v := viper.New()
	bindLogEnv(v)
	return logConfig(v)
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logging.Debug("no .env file loaded", "error", err)
	}
}

func bindLogEnv(v *viper.Viper) {
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.SetDefault("log.level", string(logging.LevelInfo))
	v.SetDefault("log.format", string(logging.FormatText))
}

func logConfig(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  strings.ToLower(v.GetString("log.level")),
		Format: strings.ToLower(v.GetString("log.format")),
	}
}

// validateConfig ensures that all configuration values are usable.
func validateConfig(config *Config) error {
	if err := ValidateLogConfig(config.Log); err != nil {
		return err
	}
	if err := ValidateGeneratorConfig(config.Generator); err != nil {
		return err
	}
	return ValidateStoreConfig(config.Store)
}

// ValidateLogConfig validates logger settings.
func ValidateLogConfig(log LogConfig) error {
	switch logging.LogLevel(log.Level) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("unsupported LOG_LEVEL %q (want debug, info, warn or error)", log.Level)
	}

	switch logging.LogFormat(log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q (want text or json)", log.Format)
	}
	return nil
}

// ValidateGeneratorConfig validates generator settings.
func ValidateGeneratorConfig(gen GeneratorConfig) error {
	var problems []string

	if gen.Days <= 0 {
		problems = append(problems, "OPSINTEL_DAYS must be positive")
	}
	if gen.Engineers <= 0 {
		problems = append(problems, "OPSINTEL_ENGINEERS must be positive")
	}
	if !keyPrefixRe.MatchString(gen.KeyPrefix) {
		problems = append(problems, "OPSINTEL_KEY_PREFIX must be uppercase letters")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid generator configuration: %v", problems)
	}
	return nil
}

// ValidateStoreConfig validates store settings for the selected backend.
func ValidateStoreConfig(store StoreConfig) error {
	var missingVars []string

	switch store.Backend {
	case BackendFile:
		if store.Dir == "" {
			missingVars = append(missingVars, "STORE_DIR")
		}
	case BackendPostgres:
		if store.DatabaseURL == "" {
			missingVars = append(missingVars, "DATABASE_URL")
		}
	case BackendS3:
		if store.S3.Bucket == "" {
			missingVars = append(missingVars, "S3_BUCKET_NAME")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s, %s or %s)",
			store.Backend, BackendFile, BackendPostgres, BackendS3)
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
