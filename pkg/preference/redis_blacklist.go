package preference

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/redis"
)

const blacklistKeyPrefix = "blacklist:"

// RedisBlacklist is a Redis-backed Blacklist implementation shared across
// processes. Entries never expire unless a TTL is configured.
type RedisBlacklist struct {
	store *redis.Store
	ttl   time.Duration
}

// RedisBlacklistOption configures a RedisBlacklist.
type RedisBlacklistOption func(*RedisBlacklist)

// WithBlacklistTTL makes blacklist entries expire after the given duration.
func WithBlacklistTTL(ttl time.Duration) RedisBlacklistOption {
	return func(b *RedisBlacklist) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// NewRedisBlacklist creates a Redis-backed blacklist.
func NewRedisBlacklist(store *redis.Store, opts ...RedisBlacklistOption) *RedisBlacklist {
	b := &RedisBlacklist{store: store}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBlacklist) IsBlacklisted(ctx context.Context, address string) (bool, error) {
	raw, err := b.store.Get(ctx, blacklistKeyPrefix+normalize(address))
	if err != nil {
		return false, errors.Join(ErrBlacklistUnavailable, err)
	}
	return raw != nil, nil
}

func (b *RedisBlacklist) Add(ctx context.Context, address string) error {
	return b.store.Set(ctx, blacklistKeyPrefix+normalize(address), []byte("1"), b.ttl)
}

func (b *RedisBlacklist) Remove(ctx context.Context, address string) error {
	return b.store.Delete(ctx, blacklistKeyPrefix+normalize(address))
}
