package wshub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// DefaultHeartbeatInterval is how often the hub pings connections and
// reaps the ones that did not answer the previous ping.
const DefaultHeartbeatInterval = 30 * time.Second

// Conn is the transport side of one websocket connection. Keeping it an
// interface lets the hub be tested without sockets; the gorilla connection
// adapts to it in the handler.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Subscription declares what a connection wants to receive: its user
// identity, named channels, and roles.
type Subscription struct {
	UserID   string
	Channels []string
	Roles    []string
}

// Notification is one fan-out unit. Target connections are the
// deduplicated union of the user's connections, connections holding any of
// the roles, and subscribers of the channel.
type Notification struct {
	UserID  string
	Roles   []string
	Channel string
	Event   string
	Payload any
}

// connection is the hub-side record of one live socket.
type connection struct {
	id       string
	conn     Conn
	userID   string
	channels map[string]struct{}
	roles    map[string]struct{}
	alive    bool
	lastSeen time.Time
}

// Hub tracks live websocket connections and fans notifications out to
// them. All indices are guarded by one mutex; publish snapshots its target
// set under the lock and performs the writes outside it, so a slow socket
// never stalls the indices.
type Hub struct {
	mu        sync.Mutex
	conns     map[string]*connection
	byChannel map[string]map[string]struct{}
	byUser    map[string]map[string]struct{}
	byRole    map[string]map[string]struct{}
	closed    bool

	logger    *slog.Logger
	heartbeat time.Duration
	now       func() time.Time
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHeartbeatInterval overrides the liveness check interval.
func WithHeartbeatInterval(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// WithLogger sets the logger for the Hub.
func WithLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHub creates an empty hub. Call Run to start the liveness loop.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		conns:     make(map[string]*connection),
		byChannel: make(map[string]map[string]struct{}),
		byUser:    make(map[string]map[string]struct{}),
		byRole:    make(map[string]map[string]struct{}),
		logger:    slog.Default(),
		heartbeat: DefaultHeartbeatInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Connect registers a live socket and returns its connection id. The
// connection receives nothing until it subscribes.
func (h *Hub) Connect(conn Conn) string {
	id := uuid.New().String()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		_ = conn.Close()
		return ""
	}
	h.conns[id] = &connection{
		id:       id,
		conn:     conn,
		channels: make(map[string]struct{}),
		roles:    make(map[string]struct{}),
		alive:    true,
		lastSeen: h.now(),
	}
	return id
}

// Subscribe registers the connection under each channel, under the user id
// when given, and under each role. Repeated subscribes accumulate.
func (h *Hub) Subscribe(id string, sub Subscription) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[id]
	if !ok {
		return ErrConnectionNotFound
	}

	if sub.UserID != "" {
		if c.userID != "" && c.userID != sub.UserID {
			h.unindex(h.byUser, c.userID, id)
		}
		c.userID = sub.UserID
		h.index(h.byUser, sub.UserID, id)
	}
	for _, name := range sub.Channels {
		c.channels[name] = struct{}{}
		h.index(h.byChannel, name, id)
	}
	for _, role := range sub.Roles {
		c.roles[role] = struct{}{}
		h.index(h.byRole, role, id)
	}
	c.lastSeen = h.now()
	return nil
}

// Unsubscribe removes the connection from the named channels, or from all
// of its channels when none are named. User and role registrations stay.
func (h *Hub) Unsubscribe(id string, channels ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[id]
	if !ok {
		return ErrConnectionNotFound
	}

	if len(channels) == 0 {
		for name := range c.channels {
			channels = append(channels, name)
		}
	}
	for _, name := range channels {
		delete(c.channels, name)
		h.unindex(h.byChannel, name, id)
	}
	return nil
}

// Disconnect removes the connection from every index and closes the
// transport. Safe to call for an already removed id.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	c, ok := h.conns[id]
	if ok {
		h.remove(c)
	}
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
	}
}

// MarkAlive records a heartbeat from the connection, keeping it past the
// next liveness sweep.
func (h *Hub) MarkAlive(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.conns[id]; ok {
		c.alive = true
		c.lastSeen = h.now()
	}
}

// Publish fans the notification out to the deduplicated union of matching
// connections and reports how many received it. A failed write disconnects
// that connection; it never fails the publish.
func (h *Hub) Publish(n Notification) int {
	frame := ServerFrame{
		Type:      FrameNotification,
		Channel:   n.Channel,
		Event:     n.Event,
		Payload:   n.Payload,
		Timestamp: h.now(),
	}

	h.mu.Lock()
	targets := make(map[string]Conn)
	collect := func(ids map[string]struct{}) {
		for id := range ids {
			if c, ok := h.conns[id]; ok {
				targets[id] = c.conn
			}
		}
	}
	if n.UserID != "" {
		collect(h.byUser[n.UserID])
	}
	for _, role := range n.Roles {
		collect(h.byRole[role])
	}
	if n.Channel != "" {
		collect(h.byChannel[n.Channel])
	}
	h.mu.Unlock()

	delivered := 0
	for id, conn := range targets {
		if err := conn.WriteJSON(frame); err != nil {
			h.logger.Warn("dropping connection on failed write",
				slog.String("connection_id", id),
				logger.Error(err),
			)
			h.Disconnect(id)
			continue
		}
		delivered++
	}
	return delivered
}

// Connections reports the number of live connections.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Run drives the liveness loop until the context is cancelled: every
// interval each connection that did not heartbeat since the previous tick
// is disconnected, and the rest are pinged and marked not-alive for the
// next round.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

// Close disconnects every connection and rejects further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	for _, c := range conns {
		h.remove(c)
	}
	h.closed = true
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.conn.Close()
	}
}

// sweep performs one liveness tick: reap connections that missed the
// previous ping, then ping the survivors.
func (h *Hub) sweep() {
	h.mu.Lock()
	var dead []*connection
	var live []*connection
	for _, c := range h.conns {
		if !c.alive {
			dead = append(dead, c)
			continue
		}
		c.alive = false
		live = append(live, c)
	}
	for _, c := range dead {
		h.remove(c)
	}
	now := h.now()
	h.mu.Unlock()

	for _, c := range dead {
		h.logger.Info("reaping dead connection", slog.String("connection_id", c.id))
		_ = c.conn.Close()
	}

	ping := ServerFrame{Type: FramePing, Timestamp: now}
	for _, c := range live {
		if err := c.conn.WriteJSON(ping); err != nil {
			h.Disconnect(c.id)
		}
	}
}

// remove deletes the connection from every index. Caller holds the lock.
func (h *Hub) remove(c *connection) {
	delete(h.conns, c.id)
	if c.userID != "" {
		h.unindex(h.byUser, c.userID, c.id)
	}
	for name := range c.channels {
		h.unindex(h.byChannel, name, c.id)
	}
	for role := range c.roles {
		h.unindex(h.byRole, role, c.id)
	}
}

func (h *Hub) index(idx map[string]map[string]struct{}, key, id string) {
	set, ok := idx[key]
	if !ok {
		set = make(map[string]struct{})
		idx[key] = set
	}
	set[id] = struct{}{}
}

func (h *Hub) unindex(idx map[string]map[string]struct{}, key, id string) {
	if set, ok := idx[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(idx, key)
		}
	}
}
