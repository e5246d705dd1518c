package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

// RedisStore keeps the encoded record lines in a single Redis list
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis using cfg.RedisURL
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB >= 0 {
		opts.DB = cfg.RedisDB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	key := cfg.RedisKey
	if key == "" {
		key = DefaultConfig().RedisKey
	}

	return &RedisStore{client: client, key: key}, nil
}

// Load implements RecordStore.Load
func (s *RedisStore) Load(ctx context.Context, catalog *plans.Catalog) ([]*subscribers.Subscriber, error) {
	lines, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange failed: %w", err)
	}

	subs, _ := decodeLines(lines, catalog)
	return subs, nil
}

// Save implements RecordStore.Save. DEL and RPUSH run in one MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, subs []*subscribers.Subscriber) error {
	values := make([]interface{}, 0, len(subs))
	for _, sub := range subs {
		values = append(values, EncodeLine(sub))
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(values) > 0 {
		pipe.RPush(ctx, s.key, values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save failed: %w", err)
	}

	return nil
}

// Close implements RecordStore.Close
func (s *RedisStore) Close() error {
	return s.client.Close()
}
