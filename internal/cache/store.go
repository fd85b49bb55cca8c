package cache

import (
	"context"
	"time"
)

// Store is the cache surface the engine depends on. Implementations must
// be safe for concurrent use. Hash operations exist so precompute results
// for different products can be merged without a read-modify-write cycle.
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	HSetJSON(ctx context.Context, key string, fields map[string]interface{}) error
	HGetJSON(ctx context.Context, key, field string, dest interface{}) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
