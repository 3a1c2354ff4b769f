package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, name := range []string{
		"LOG_LEVEL", "LOG_FORMAT", "OPSINTEL_SEED", "OPSINTEL_DAYS", "OPSINTEL_ENGINEERS", "OPSINTEL_KEY_PREFIX",
		"STORE_BACKEND", "STORE_DIR", "DATABASE_URL", "S3_BUCKET_NAME",
		"AWS_ENDPOINT_URL", "AWS_DEFAULT_REGION", "HTTP_ADDR",
	} {
		t.Setenv(name, "")
	}

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, LogConfig{Level: "info", Format: "text"}, config.Log)
	assert.Equal(t, int64(0), config.Generator.Seed)
	assert.Equal(t, 90, config.Generator.Days)
	assert.Equal(t, 8, config.Generator.Engineers)
	assert.Equal(t, "PROJ", config.Generator.KeyPrefix)
	assert.Equal(t, BackendFile, config.Store.Backend)
	assert.Equal(t, "data", config.Store.Dir)
	assert.Equal(t, "ops-data", config.Store.S3.Bucket)
	assert.Equal(t, "us-east-1", config.Store.S3.Region)
	assert.Equal(t, ":8501", config.HTTP.Addr)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("OPSINTEL_SEED", "42")
	t.Setenv("OPSINTEL_DAYS", "30")
	t.Setenv("OPSINTEL_ENGINEERS", "5")
	t.Setenv("OPSINTEL_KEY_PREFIX", "OPS")
	t.Setenv("STORE_BACKEND", "S3")
	t.Setenv("S3_BUCKET_NAME", "runs")
	t.Setenv("AWS_ENDPOINT_URL", "http://localhost:4566")
	t.Setenv("AWS_DEFAULT_REGION", "eu-west-1")
	t.Setenv("HTTP_ADDR", ":9000")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(42), config.Generator.Seed)
	assert.Equal(t, 30, config.Generator.Days)
	assert.Equal(t, 5, config.Generator.Engineers)
	assert.Equal(t, "OPS", config.Generator.KeyPrefix)
	assert.Equal(t, BackendS3, config.Store.Backend)
	assert.Equal(t, "runs", config.Store.S3.Bucket)
	assert.Equal(t, "http://localhost:4566", config.Store.S3.Endpoint)
	assert.Equal(t, "eu-west-1", config.Store.S3.Region)
	assert.Equal(t, ":9000", config.HTTP.Addr)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	config, err := LoadConfig()
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidateGeneratorConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GeneratorConfig
		wantErr bool
	}{
		{name: "Defaults", config: GeneratorConfig{Days: 90, Engineers: 8, KeyPrefix: "PROJ"}},
		{name: "Zero days", config: GeneratorConfig{Days: 0, Engineers: 8, KeyPrefix: "PROJ"}, wantErr: true},
		{name: "Negative days", config: GeneratorConfig{Days: -5, Engineers: 8, KeyPrefix: "PROJ"}, wantErr: true},
		{name: "No engineers", config: GeneratorConfig{Days: 90, Engineers: 0, KeyPrefix: "PROJ"}, wantErr: true},
		{name: "Lowercase prefix", config: GeneratorConfig{Days: 90, Engineers: 8, KeyPrefix: "proj"}, wantErr: true},
		{name: "Prefix with digits", config: GeneratorConfig{Days: 90, Engineers: 8, KeyPrefix: "P1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeneratorConfig(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateStoreConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  StoreConfig
		wantErr string
	}{
		{name: "File backend", config: StoreConfig{Backend: BackendFile, Dir: "data"}},
		{name: "File backend without dir", config: StoreConfig{Backend: BackendFile}, wantErr: "STORE_DIR"},
		{name: "Postgres backend", config: StoreConfig{Backend: BackendPostgres, DatabaseURL: "postgres://localhost/ops"}},
		{name: "Postgres without URL", config: StoreConfig{Backend: BackendPostgres}, wantErr: "DATABASE_URL"},
		{name: "S3 backend", config: StoreConfig{Backend: BackendS3, S3: S3Config{Bucket: "ops-data"}}},
		{name: "S3 without bucket", config: StoreConfig{Backend: BackendS3}, wantErr: "S3_BUCKET_NAME"},
		{name: "Unknown backend", config: StoreConfig{Backend: "redis"}, wantErr: "unknown STORE_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoreConfig(tt.config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// unsetEnv removes key for the duration of the test. Unlike t.Setenv(key, "")
// it leaves the key absent, so a .env file may supply it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()

	prev, ok := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := "LOG_LEVEL=debug\nLOG_FORMAT=json\nOPSINTEL_SEED=7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, name := range []string{"LOG_LEVEL", "LOG_FORMAT", "OPSINTEL_SEED"} {
		unsetEnv(t, name)
	}

	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, LoadLogConfig())

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, config.Log)
	assert.Equal(t, int64(7), config.Generator.Seed)
}

func TestLoadConfigRejectsMalformedNumbers(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Seed with a typo", key: "OPSINTEL_SEED", value: "4x2"},
		{name: "Days as a word", key: "OPSINTEL_DAYS", value: "ninety"},
		{name: "Fractional engineers", key: "OPSINTEL_ENGINEERS", value: "8.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			config, err := LoadConfig()
			require.Error(t, err)
			assert.Nil(t, config)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidateLogConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  LogConfig
		wantErr string
	}{
		{name: "Text info", config: LogConfig{Level: "info", Format: "text"}},
		{name: "JSON debug", config: LogConfig{Level: "debug", Format: "json"}},
		{name: "Unknown level", config: LogConfig{Level: "verbose", Format: "text"}, wantErr: "LOG_LEVEL"},
		{name: "Unknown format", config: LogConfig{Level: "warn", Format: "xml"}, wantErr: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogConfig(tt.config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
