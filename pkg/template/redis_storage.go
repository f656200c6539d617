package template

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/redis"
)

const (
	// DefaultTTL bounds how long template records live in the store.
	DefaultTTL = 365 * 24 * time.Hour

	keyPrefix     = "template:"
	nameKeyPrefix = "template_name:"
)

// RedisStorage persists templates in Redis with a bounded TTL. The latest
// version of each named template is tracked under a secondary name key.
type RedisStorage struct {
	store *redis.Store
	ttl   time.Duration
}

// RedisStorageOption configures a RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithTTL overrides the record TTL.
func WithTTL(ttl time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisStorage creates a Redis-backed template storage.
func NewRedisStorage(store *redis.Store, opts ...RedisStorageOption) *RedisStorage {
	s := &RedisStorage{
		store: store,
		ttl:   DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) Create(ctx context.Context, tpl Template) error {
	if tpl.ID == "" {
		return ErrInvalidTemplate
	}
	if err := s.write(ctx, tpl); err != nil {
		return err
	}
	// Point the name index at the newest version.
	return s.store.Set(ctx, nameKeyPrefix+tpl.Name, []byte(tpl.ID), s.ttl)
}

func (s *RedisStorage) Get(ctx context.Context, id string) (*Template, error) {
	raw, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if raw == nil {
		return nil, ErrTemplateNotFound
	}
	var tpl Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", id, err)
	}
	return &tpl, nil
}

func (s *RedisStorage) GetByName(ctx context.Context, name string) (*Template, error) {
	id, err := s.store.Get(ctx, nameKeyPrefix+name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template name: %w", err)
	}
	if id == nil {
		return nil, ErrTemplateNotFound
	}
	return s.Get(ctx, string(id))
}

func (s *RedisStorage) List(ctx context.Context, opts ListOptions) ([]Template, error) {
	keys, err := s.store.Keys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan templates: %w", err)
	}

	out := make([]Template, 0, len(keys))
	for _, key := range keys {
		raw, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue // expired between scan and read
		}
		var tpl Template
		if err := json.Unmarshal(raw, &tpl); err != nil {
			continue
		}
		if opts.Type != "" && tpl.Type != opts.Type {
			continue
		}
		if opts.Category != "" && tpl.Category != opts.Category {
			continue
		}
		if opts.OnlyActive && !tpl.Active {
			continue
		}
		out = append(out, tpl)
	}
	return out, nil
}

func (s *RedisStorage) Save(ctx context.Context, tpl Template) error {
	if tpl.ID == "" {
		return ErrInvalidTemplate
	}
	existing, err := s.store.Get(ctx, keyPrefix+tpl.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTemplateNotFound
	}
	return s.write(ctx, tpl)
}

func (s *RedisStorage) write(ctx context.Context, tpl Template) error {
	raw, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	return s.store.Set(ctx, keyPrefix+tpl.ID, raw, s.ttl)
}
