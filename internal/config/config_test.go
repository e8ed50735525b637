package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{"local", EnvironmentLocal, false},
		{"LOCAL", EnvironmentLocal, false},
		{"Production", EnvironmentProduction, false},
		{"staging", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(EnvironmentLocal, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvironmentLocal, cfg.Environment)
	assert.Equal(t, 8000, cfg.Application.Port)
	assert.Equal(t, 5, cfg.Database.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Database.AcquireTimeout)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, StorageDriverFilesystem, cfg.Storage.Driver)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FilesLayered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
application:
  port: 8000
  host: 0.0.0.0
database:
  host: db
  database_name: newsletter
  require_ssl: false
`)
	writeFile(t, dir, "production.yaml", `
database:
  require_ssl: true
log:
  level: warn
`)

	cfg, err := Load(EnvironmentProduction, dir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Application.Host)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "newsletter", cfg.Database.DatabaseName)
	assert.True(t, cfg.Database.RequireSSL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "application:\n  port: 8000\n")

	t.Setenv("APP_APPLICATION__PORT", "5001")
	t.Setenv("APP_DATABASE__HOST", "postgres.internal")
	t.Setenv("APP_DATABASE__ACQUIRE_TIMEOUT", "5s")
	t.Setenv("APP_REDIS__URL", "redis://localhost:6379/0")

	cfg, err := Load(EnvironmentLocal, dir)
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Application.Port)
	assert.Equal(t, "postgres.internal", cfg.Database.Host)
	assert.Equal(t, 5*time.Second, cfg.Database.AcquireTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "application: [unterminated\n")

	_, err := Load(EnvironmentLocal, dir)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownEnvironment(t *testing.T) {
	t.Setenv("APP_CONFIG_DIR", t.TempDir())
	t.Setenv("APP_ENVIRONMENT", "staging")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "staging is not a supported environment")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(EnvironmentLocal, t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	t.Run("r2 requires credentials", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Driver = StorageDriverR2
		assert.ErrorContains(t, cfg.Validate(), "R2")

		cfg.Storage.R2 = R2Config{
			AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret",
			BucketName: "bucket", PublicURL: "https://cdn.example.com",
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Driver = "ftp"
		assert.Error(t, cfg.Validate())
	})

	t.Run("body must fit an image", func(t *testing.T) {
		cfg := base()
		cfg.Register.MaxBodyBytes = cfg.Register.MaxImageBytes - 1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rate limit needs a window", func(t *testing.T) {
		cfg := base()
		cfg.RateLimit.Requests = 10
		cfg.RateLimit.Window = 0
		assert.ErrorContains(t, cfg.Validate(), "rate_limit.window")

		cfg.RateLimit.Requests = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, Username: "postgres", Password: "pa ss",
		DatabaseName: "chocoapi", AcquireTimeout: 2 * time.Second,
	}

	assert.Equal(t, `host=localhost port=5432 user=postgres password='pa ss' sslmode=disable connect_timeout=2`, d.DSNWithoutDB())
	assert.Equal(t, d.DSNWithoutDB()+" dbname=chocoapi", d.DSN())

	d.RequireSSL = true
	assert.Contains(t, d.DSN(), "sslmode=require")
}
