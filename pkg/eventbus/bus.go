package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/wshub"
)

// DefaultRingSize is how many recent events the bus retains for
// introspection.
const DefaultRingSize = 1000

// Handler consumes one event. Handlers run synchronously during Publish;
// a panicking handler is recovered and logged without affecting the
// others.
type Handler func(ctx context.Context, evt Event)

// Notifier is the slice of the websocket hub the bus pushes mapped
// notifications to. Satisfied by *wshub.Hub.
type Notifier interface {
	Publish(n wshub.Notification) int
}

type subscription struct {
	id        string
	eventType string
	handler   Handler
}

// Bus is the in-process domain event bus: it retains recent events in a
// ring buffer, dispatches to type-keyed subscribers settle-all, and maps
// each event to a best-effort websocket notification.
type Bus struct {
	mu       sync.Mutex
	subs     map[string]map[string]Handler // event type -> sub id -> handler
	subTypes map[string]string             // sub id -> event type
	events   *ring

	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithNotifier wires the websocket hub mapped notifications publish to.
func WithNotifier(n Notifier) BusOption {
	return func(b *Bus) {
		b.notifier = n
	}
}

// WithLogger sets the logger for the Bus.
func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRingSize overrides the retained event count.
func WithRingSize(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.events = newRing(n)
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) BusOption {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBus creates an event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:     make(map[string]map[string]Handler),
		subTypes: make(map[string]string),
		events:   newRing(DefaultRingSize),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish records the event, runs every subscriber for its type, and
// pushes the mapped notification to the hub. Handler panics are isolated
// per handler; the publisher never sees them.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = b.now()
	}

	b.mu.Lock()
	b.events.append(evt)
	handlers := make([]Handler, 0, len(b.subs[evt.Type]))
	for _, h := range b.subs[evt.Type] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		b.dispatch(ctx, evt, h)
	}

	if b.notifier != nil {
		if n, ok := MapNotification(evt); ok {
			b.notifier.Publish(n)
		}
	}
}

// Subscribe registers a handler for one event type and returns the
// subscription id.
func (b *Bus) Subscribe(eventType string, h Handler) string {
	id := uuid.New().String()

	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[eventType]
	if !ok {
		set = make(map[string]Handler)
		b.subs[eventType] = set
	}
	set[id] = h
	b.subTypes[id] = eventType
	return id
}

// SubscribeMany registers the handler for several event types and returns
// one subscription id per type.
func (b *Bus) SubscribeMany(eventTypes []string, h Handler) []string {
	ids := make([]string, 0, len(eventTypes))
	for _, t := range eventTypes {
		ids = append(ids, b.Subscribe(t, h))
	}
	return ids
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	eventType, ok := b.subTypes[subID]
	if !ok {
		return
	}
	delete(b.subTypes, subID)
	if set, ok := b.subs[eventType]; ok {
		delete(set, subID)
		if len(set) == 0 {
			delete(b.subs, eventType)
		}
	}
}

// Recent returns up to n retained events, newest first. n <= 0 returns
// everything retained.
func (b *Bus) Recent(n int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.events.recent(n)
}

func (b *Bus) dispatch(ctx context.Context, evt Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.LogAttrs(ctx, slog.LevelError, "event handler panicked",
				logger.EventType(evt.Type),
				slog.Any("panic", r),
			)
		}
	}()
	h(ctx, evt)
}
