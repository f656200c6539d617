package preference

import (
	"context"
	"strings"
	"sync"
)

// Blacklist answers whether an address (email, phone number, push token,
// webhook URL) is globally blocked from receiving notifications.
type Blacklist interface {
	// IsBlacklisted reports whether the address is blocked.
	IsBlacklisted(ctx context.Context, address string) (bool, error)

	// Add blocks an address.
	Add(ctx context.Context, address string) error

	// Remove unblocks an address.
	Remove(ctx context.Context, address string) error
}

// MemoryBlacklist is an in-memory Blacklist implementation.
// Suitable for development and testing.
type MemoryBlacklist struct {
	addresses map[string]struct{}
	mu        sync.RWMutex
}

// NewMemoryBlacklist creates an empty in-memory blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		addresses: make(map[string]struct{}),
	}
}

func (b *MemoryBlacklist) IsBlacklisted(ctx context.Context, address string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.addresses[normalize(address)]
	return ok, nil
}

func (b *MemoryBlacklist) Add(ctx context.Context, address string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.addresses[normalize(address)] = struct{}{}
	return nil
}

func (b *MemoryBlacklist) Remove(ctx context.Context, address string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.addresses, normalize(address))
	return nil
}

// normalize lowercases and trims addresses so that lookups are insensitive to
// the casing callers happened to supply.
func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
