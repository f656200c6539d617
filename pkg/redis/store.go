package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a thin key-value wrapper around go-redis that exposes exactly the
// operations the notifykit storages rely on: atomic get, set-with-TTL and
// list-push. Cross-key transactions are intentionally not offered.
type Store struct {
	db            redis.UniversalClient
	scanBatchSize int64
}

// NewStore wraps an established Redis client.
// Uses default scan batch size of 1000 for efficient key scanning.
func NewStore(redisClient redis.UniversalClient) *Store {
	return &Store{
		db:            redisClient,
		scanBatchSize: 1000,
	}
}

// Get returns nil for empty keys and missing values (redis.Nil becomes nil).
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if len(key) == 0 {
		return nil, nil
	}
	val, err := s.db.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

// Set stores key-value with expiration. Zero duration means no expiration.
func (s *Store) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if len(key) == 0 || len(val) == 0 {
		return nil
	}
	return s.db.Set(ctx, key, val, ttl).Err()
}

// ListPush appends values to the list at key and refreshes its expiration.
// The TTL is applied to the whole list, not to individual entries.
func (s *Store) ListPush(ctx context.Context, key string, ttl time.Duration, vals ...[]byte) error {
	if len(key) == 0 || len(vals) == 0 {
		return nil
	}
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	if err := s.db.RPush(ctx, key, args...).Err(); err != nil {
		return err
	}
	if ttl > 0 {
		return s.db.Expire(ctx, key, ttl).Err()
	}
	return nil
}

// ListRange returns list entries between start and stop (inclusive, redis
// semantics: 0 -1 returns the whole list). Missing keys yield an empty slice.
func (s *Store) ListRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if len(key) == 0 {
		return nil, nil
	}
	vals, err := s.db.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Delete removes a key. Empty keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if len(key) == 0 {
		return nil
	}
	return s.db.Del(ctx, key).Err()
}

// Keys returns keys matching pattern using SCAN to avoid blocking Redis.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	keys := make([]string, 0, 64)
	var cursor uint64
	for {
		batch, next, err := s.db.Scan(ctx, cursor, pattern, s.scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	return keys, nil
}

// Conn returns the underlying Redis client for advanced operations.
func (s *Store) Conn() redis.UniversalClient {
	return s.db
}

// Close terminates the Redis connection.
func (s *Store) Close() error {
	return s.db.Close()
}
