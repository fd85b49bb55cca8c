package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eskept/pricing-engine/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a Redis client with a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a Store from the Redis section of the config.
// Returns nil when Redis is disabled so callers can fall back to memory.
func NewRedisStore(cfg *config.RedisConfig) *RedisStore {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "eskept"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{client: client, prefix: prefix}
}

// Client exposes the underlying Redis client for wiring the task queue.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// GetJSON reads a JSON value, reporting whether the key existed.
func (s *RedisStore) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := s.client.Get(ctx, s.buildKey(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON writes a JSON value with a TTL.
func (s *RedisStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.buildKey(key), payload, ttl).Err()
}

// HSetJSON writes JSON-encoded fields into a hash in one round trip.
func (s *RedisStore) HSetJSON(ctx context.Context, key string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	encoded := make([]interface{}, 0, len(fields)*2)
	for field, value := range fields {
		payload, err := json.Marshal(value)
		if err != nil {
			return err
		}
		encoded = append(encoded, field, payload)
	}
	return s.client.HSet(ctx, s.buildKey(key), encoded...).Err()
}

// HGetJSON reads one JSON-encoded hash field, reporting whether it existed.
func (s *RedisStore) HGetJSON(ctx context.Context, key, field string, dest interface{}) (bool, error) {
	val, err := s.client.HGet(ctx, s.buildKey(key), field).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// HGetAll reads every field of a hash as raw JSON strings.
func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, s.buildKey(key)).Result()
}

// HDel removes fields from a hash.
func (s *RedisStore) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return s.client.HDel(ctx, s.buildKey(key), fields...).Err()
}

// Expire refreshes the TTL of a key.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, s.buildKey(key), ttl).Err()
}

// Del removes keys.
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	built := make([]string, len(keys))
	for i, key := range keys {
		built[i] = s.buildKey(key)
	}
	return s.client.Del(ctx, built...).Err()
}

func (s *RedisStore) buildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.prefix
	}
	return fmt.Sprintf("%s:%s", s.prefix, trimmed)
}
