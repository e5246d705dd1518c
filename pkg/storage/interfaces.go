package storage

import (
	"context"
	"fmt"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

// Backend types
const (
	TypeFile     = "file"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeRedis    = "redis"
	TypeS3       = "s3"
)

// RecordStore persists the full subscriber set. Save always replaces the
// entire stored content; there is no append or partial write.
type RecordStore interface {
	// Load reads every stored record, resolving plan names through catalog
	Load(ctx context.Context, catalog *plans.Catalog) ([]*subscribers.Subscriber, error)

	// Save replaces the stored content with subs, in order
	Save(ctx context.Context, subs []*subscribers.Subscriber) error

	// Close releases backend resources
	Close() error
}

// Config for storage backend
type Config struct {
	Type string // "file", "sqlite", "postgres", "redis", "s3"

	// File config
	FilePath string

	// SQLite config
	SQLitePath string

	// PostgreSQL config
	PostgresURL string

	// Redis config
	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3Key          string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:       TypeFile,
		FilePath:   "users.txt",
		SQLitePath: "users.db",
		RedisDB:    -1,
		RedisKey:   "subdesk:subscribers",
		S3Region:   "us-east-1",
		S3Key:      "users.txt",
	}
}

// New opens the backend selected by cfg.Type
func New(ctx context.Context, cfg Config) (RecordStore, error) {
	switch cfg.Type {
	case TypeFile, "":
		return NewFileStore(cfg.FilePath)
	case TypeSQLite:
		return OpenSQLStore(ctx, DialectSQLite, cfg.SQLitePath)
	case TypePostgres:
		return OpenSQLStore(ctx, DialectPostgres, cfg.PostgresURL)
	case TypeRedis:
		return NewRedisStore(ctx, cfg)
	case TypeS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
