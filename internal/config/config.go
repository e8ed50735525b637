package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment is the runtime environment the application runs in.
type Environment string

const (
	EnvironmentLocal      Environment = "local"
	EnvironmentProduction Environment = "production"
)

// ParseEnvironment accepts "local" or "production" in any case.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(EnvironmentLocal):
		return EnvironmentLocal, nil
	case string(EnvironmentProduction):
		return EnvironmentProduction, nil
	default:
		return "", fmt.Errorf("%s is not a supported environment. Use either `local` or `production`", s)
	}
}

// Storage drivers for uploaded images.
const (
	StorageDriverFilesystem = "filesystem"
	StorageDriverR2         = "r2"
)

type Config struct {
	Environment Environment `mapstructure:"-"`

	Application ApplicationConfig `mapstructure:"application"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Log         LogConfig         `mapstructure:"log"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Redis       RedisConfig       `mapstructure:"redis"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Register    RegisterConfig    `mapstructure:"register"`
}

type ApplicationConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	BaseURL         string        `mapstructure:"base_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns host:port suitable for net.Listen.
func (a ApplicationConfig) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

type DatabaseConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	DatabaseName   string        `mapstructure:"database_name"`
	RequireSSL     bool          `mapstructure:"require_ssl"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	AcquireTimeout time.Duration `mapstructure:"acquire_timeout"`
	MaxOpenConns   int           `mapstructure:"max_open_conns"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"`
}

// DSNWithoutDB returns a lib/pq connection string that does not select a
// database, used to create test databases.
func (d DatabaseConfig) DSNWithoutDB() string {
	sslMode := "disable"
	if d.RequireSSL {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s sslmode=%s connect_timeout=%d",
		d.Host, d.Port, d.Username, quoteDSN(d.Password), sslMode, int(d.AcquireTimeout.Seconds()))
}

// DSN returns the lib/pq connection string for the configured database.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s dbname=%s", d.DSNWithoutDB(), quoteDSN(d.DatabaseName))
}

// quoteDSN quotes a keyword/value connection string value.
func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Driver  string   `mapstructure:"driver"`
	BaseDir string   `mapstructure:"base_dir"`
	R2      R2Config `mapstructure:"r2"`
}

type R2Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	PublicURL       string `mapstructure:"public_url"`
}

// RedisConfig is optional; an empty URL disables rate limiting and events.
type RedisConfig struct {
	URL          string `mapstructure:"url"`
	StreamMaxLen int64  `mapstructure:"stream_max_len"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type RegisterConfig struct {
	MaxBodyBytes  int64 `mapstructure:"max_body_bytes"`
	MaxImageBytes int64 `mapstructure:"max_image_bytes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.host", "127.0.0.1")
	v.SetDefault("application.port", 8000)
	v.SetDefault("application.base_url", "http://127.0.0.1:8000")
	v.SetDefault("application.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database_name", "chocoapi")
	v.SetDefault("database.require_ssl", false)
	v.SetDefault("database.max_retries", 5)
	v.SetDefault("database.retry_backoff", time.Second)
	v.SetDefault("database.acquire_timeout", 2*time.Second)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)

	v.SetDefault("log.level", "info")

	v.SetDefault("storage.driver", StorageDriverFilesystem)
	v.SetDefault("storage.base_dir", "var/storage")
	v.SetDefault("storage.r2.account_id", "")
	v.SetDefault("storage.r2.access_key_id", "")
	v.SetDefault("storage.r2.secret_access_key", "")
	v.SetDefault("storage.r2.bucket_name", "")
	v.SetDefault("storage.r2.public_url", "")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.stream_max_len", 10000)

	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("register.max_body_bytes", 6*1024*1024)
	v.SetDefault("register.max_image_bytes", 5*1024*1024)
}

// LoadConfig reads configuration in increasing order of precedence:
// defaults, <dir>/base.yaml, <dir>/<environment>.yaml, then APP_* environment
// variables using "__" as the section separator (APP_DATABASE__HOST).
//
// The directory comes from APP_CONFIG_DIR (default "configuration") and the
// environment from APP_ENVIRONMENT (default "local"). Both files are optional.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found or error loading it, relying on environment variables")
	}

	env := EnvironmentLocal
	if raw, ok := os.LookupEnv("APP_ENVIRONMENT"); ok {
		parsed, err := ParseEnvironment(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse APP_ENVIRONMENT: %w", err)
		}
		env = parsed
	}

	dir := os.Getenv("APP_CONFIG_DIR")
	if dir == "" {
		dir = "configuration"
	}

	return Load(env, dir)
}

// Load builds the configuration for env from the files in dir and the process
// environment.
func Load(env Environment, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, name := range []string{"base", string(env)} {
		if err := mergeFile(v, filepath.Join(dir, name+".yaml")); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix("app")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to deserialize configuration: %w", err)
	}
	cfg.Environment = env

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Validate checks settings that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Application.Port < 0 || c.Application.Port > 65535 {
		return fmt.Errorf("application.port %d out of range", c.Application.Port)
	}
	if c.Database.MaxRetries < 0 {
		return fmt.Errorf("database.max_retries must not be negative")
	}

	switch c.Storage.Driver {
	case StorageDriverFilesystem:
		if c.Storage.BaseDir == "" {
			return fmt.Errorf("storage.base_dir is required for the filesystem driver")
		}
	case StorageDriverR2:
		r2 := c.Storage.R2
		if r2.AccountID == "" || r2.AccessKeyID == "" || r2.SecretAccessKey == "" || r2.BucketName == "" || r2.PublicURL == "" {
			return fmt.Errorf("missing Cloudflare R2 configuration")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive when rate_limit.requests is set")
	}

	if c.Register.MaxImageBytes <= 0 || c.Register.MaxBodyBytes < c.Register.MaxImageBytes {
		return fmt.Errorf("register.max_body_bytes must be at least register.max_image_bytes")
	}
	return nil
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}
