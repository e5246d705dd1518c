package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/subdesk/pkg/observability"
	"github.com/platinummonkey/subdesk/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Plan catalog file; empty means the built-in catalog
	CatalogPath string

	// Audit trail directory; empty disables auditing
	AuditDir string

	// Storage configuration
	Storage storage.Config

	// Observability configuration
	Observability ObservabilityConfig
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel  observability.LogLevel
	LogFormat string // "text" or "json"

	// Metrics are written here at exit when set
	MetricsFile string

	// Cron schedule for rewriting MetricsFile while watch runs
	MetricsSchedule string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		CatalogPath:   getEnv("SUBDESK_CATALOG_PATH", ""),
		AuditDir:      getEnv("SUBDESK_AUDIT_DIR", ""),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storeType := getEnv("SUBDESK_STORE_TYPE", ""); storeType != "" {
		cfg.Type = strings.ToLower(storeType)
	}

	// File config
	if filePath := getEnv("SUBDESK_FILE_PATH", ""); filePath != "" {
		cfg.FilePath = filePath
	}

	// SQL config
	if sqlitePath := getEnv("SUBDESK_SQLITE_PATH", ""); sqlitePath != "" {
		cfg.SQLitePath = sqlitePath
	}
	if pgURL := getEnv("SUBDESK_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}

	// Redis config
	if redisURL := getEnv("SUBDESK_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("SUBDESK_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("SUBDESK_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisKey := getEnv("SUBDESK_REDIS_KEY", ""); redisKey != "" {
		cfg.RedisKey = redisKey
	}

	// S3 config
	if s3Endpoint := getEnv("SUBDESK_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("SUBDESK_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("SUBDESK_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3Key := getEnv("SUBDESK_S3_KEY", ""); s3Key != "" {
		cfg.S3Key = s3Key
	}
	if s3AccessKey := getEnv("SUBDESK_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("SUBDESK_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	cfg.S3UsePathStyle = getEnvBool("SUBDESK_S3_USE_PATH_STYLE", false)

	return cfg
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:        observability.ParseLogLevel(getEnv("SUBDESK_LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("SUBDESK_LOG_FORMAT", observability.FormatText)),
		MetricsFile:     getEnv("SUBDESK_METRICS_FILE", ""),
		MetricsSchedule: getEnv("SUBDESK_METRICS_SCHEDULE", "@every 1m"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case storage.TypeFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("file path is required for file storage")
		}
	case storage.TypeSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	case storage.TypePostgres:
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	case storage.TypeRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis storage")
		}
	case storage.TypeS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be file, sqlite, postgres, redis, or s3)", c.Storage.Type)
	}

	switch c.Observability.LogFormat {
	case observability.FormatText, observability.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	if c.Observability.MetricsSchedule != "" {
		if _, err := cron.ParseStandard(c.Observability.MetricsSchedule); err != nil {
			return fmt.Errorf("invalid metrics schedule %q: %w", c.Observability.MetricsSchedule, err)
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
