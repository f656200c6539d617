package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Registry holds the configured providers per channel, tracks their health
// and usage, and picks the one a delivery should go through. All state is
// guarded by a single mutex; usage increments and selection reads never race.
type Registry struct {
	providers map[string]*Provider // id -> provider
	senders   map[string]Sender    // provider name -> sender
	mu        sync.Mutex
	logger    *slog.Logger
	now       func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger for the Registry.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source used for limit-period rollover.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry creates an empty provider registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		providers: make(map[string]*Provider),
		senders:   make(map[string]Sender),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a provider configuration and binds its sender.
// New providers start healthy until a health check says otherwise.
func (r *Registry) Register(p Provider, sender Sender) error {
	if p.ID == "" || p.Name == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidProvider)
	}
	if !p.Channel.Valid() {
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidProvider, p.Channel)
	}
	if sender == nil {
		return fmt.Errorf("%w: sender is required", ErrInvalidProvider)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.ID]; exists {
		return fmt.Errorf("%w: %s", ErrProviderExists, p.ID)
	}
	if p.Health == "" {
		p.Health = HealthHealthy
	}
	r.providers[p.ID] = &p
	r.senders[p.Name] = sender
	return nil
}

// Select returns the provider a delivery on the channel should use: the
// primary if it is healthy and under its limits, otherwise the first
// available fallback. ErrProviderUnavailable means every configured provider
// is down or rate-limited right now.
func (r *Registry) Select(ctx context.Context, channel notifykit.Channel) (*Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	candidates := make([]*Provider, 0, 2)
	for _, p := range r.providers {
		if p.Channel == channel {
			candidates = append(candidates, p)
		}
	}
	// Primary first, then stable by id so fallback order is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Primary != candidates[j].Primary {
			return candidates[i].Primary
		}
		return candidates[i].ID < candidates[j].ID
	})

	for _, p := range candidates {
		if p.Available(now) {
			out := *p
			return &out, nil
		}
	}

	r.logger.LogAttrs(ctx, slog.LevelWarn, "no provider available",
		logger.Channel(string(channel)),
		slog.Int("configured", len(candidates)),
	)
	return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, channel)
}

// Sender returns the sender bound to the provider name.
func (r *Registry) Sender(name string) (Sender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.senders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSenderNotFound, name)
	}
	return s, nil
}

// RecordUsage increments the provider's usage counters, resetting any
// counter whose measurement period has rolled over.
func (r *Registry) RecordUsage(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	now := r.now()
	p.Usage = p.Usage.rolled(now)
	p.Usage.Minute++
	p.Usage.Day++
	p.Usage.Month++
	return nil
}

// SetHealth records the provider's health status, typically from a periodic
// external health check.
func (r *Registry) SetHealth(id string, status HealthStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	p.Health = status
	p.LastHealthCheckAt = r.now()
	return nil
}

// Get returns a copy of the provider record.
func (r *Registry) Get(id string) (*Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	out := *p
	return &out, nil
}

// List returns copies of all registered providers.
func (r *Registry) List() []Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Probe checks one provider's liveness.
type Probe func(ctx context.Context, p Provider) HealthStatus

// RunHealthChecks probes every provider at the given interval until the
// context is cancelled. Probe results are applied via SetHealth.
func (r *Registry) RunHealthChecks(ctx context.Context, interval time.Duration, probe Probe) {
	if probe == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range r.List() {
				status := probe(ctx, p)
				if err := r.SetHealth(p.ID, status); err != nil {
					r.logger.LogAttrs(ctx, slog.LevelError, "failed to record provider health",
						slog.String("provider_id", p.ID),
						logger.Error(err),
					)
				}
			}
		}
	}
}
