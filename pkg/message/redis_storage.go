package message

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/redis"
)

const (
	// DefaultTTL bounds how long message records live in the store.
	DefaultTTL = 30 * 24 * time.Hour
	// DefaultAttemptTTL bounds the delivery attempt log. Attempt records
	// are operational events, kept much shorter than the message itself.
	DefaultAttemptTTL = 24 * time.Hour

	keyPrefix        = "message:"
	attemptKeyPrefix = "delivery_status:"
)

// RedisStorage persists messages and their delivery logs in Redis with
// bounded TTLs. Attempts live in a list under delivery_status:<id> so
// appends are atomic and ordered.
type RedisStorage struct {
	store      *redis.Store
	ttl        time.Duration
	attemptTTL time.Duration
}

// RedisStorageOption configures a RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithTTL overrides the message record TTL.
func WithTTL(ttl time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithAttemptTTL overrides the delivery log TTL.
func WithAttemptTTL(ttl time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		if ttl > 0 {
			s.attemptTTL = ttl
		}
	}
}

// NewRedisStorage creates a Redis-backed message storage.
func NewRedisStorage(store *redis.Store, opts ...RedisStorageOption) *RedisStorage {
	s := &RedisStorage{
		store:      store,
		ttl:        DefaultTTL,
		attemptTTL: DefaultAttemptTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) Create(ctx context.Context, msg Message) error {
	if msg.ID == "" {
		return fmt.Errorf("%w: message id is required", ErrValidation)
	}
	return s.write(ctx, msg)
}

func (s *RedisStorage) Get(ctx context.Context, id string) (*Message, error) {
	raw, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if raw == nil {
		return nil, ErrMessageNotFound
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", id, err)
	}
	return &msg, nil
}

func (s *RedisStorage) Save(ctx context.Context, msg Message) error {
	raw, err := s.store.Get(ctx, keyPrefix+msg.ID)
	if err != nil {
		return fmt.Errorf("failed to load message: %w", err)
	}
	if raw == nil {
		return ErrMessageNotFound
	}
	return s.write(ctx, msg)
}

func (s *RedisStorage) AppendAttempt(ctx context.Context, messageID string, attempt Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to encode attempt: %w", err)
	}
	return s.store.ListPush(ctx, attemptKeyPrefix+messageID, s.attemptTTL, data)
}

func (s *RedisStorage) Attempts(ctx context.Context, messageID string) ([]Attempt, error) {
	items, err := s.store.ListRange(ctx, attemptKeyPrefix+messageID, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery log: %w", err)
	}
	attempts := make([]Attempt, 0, len(items))
	for _, item := range items {
		var a Attempt
		if err := json.Unmarshal(item, &a); err != nil {
			return nil, fmt.Errorf("failed to decode attempt for %s: %w", messageID, err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func (s *RedisStorage) write(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := s.store.Set(ctx, keyPrefix+msg.ID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}
