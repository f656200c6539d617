package wshub_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/wshub"
)

// fakeConn records frames written to it and can be told to fail.
type fakeConn struct {
	mu     sync.Mutex
	frames []wshub.ServerFrame
	closed bool
	fail   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errors.New("broken pipe")
	}
	if frame, ok := v.(wshub.ServerFrame); ok {
		c.frames = append(c.frames, frame)
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) notifications() []wshub.ServerFrame {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []wshub.ServerFrame
	for _, f := range c.frames {
		if f.Type == wshub.FrameNotification {
			out = append(out, f)
		}
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) setFail(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fail
}

func TestHub_Publish(t *testing.T) {
	t.Parallel()

	t.Run("channel subscribers receive the frame", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		sub := &fakeConn{}
		other := &fakeConn{}

		subID := hub.Connect(sub)
		otherID := hub.Connect(other)
		require.NoError(t, hub.Subscribe(subID, wshub.Subscription{Channels: []string{"loans"}}))
		require.NoError(t, hub.Subscribe(otherID, wshub.Subscription{Channels: []string{"payments"}}))

		delivered := hub.Publish(wshub.Notification{Channel: "loans", Event: "loan.approved"})
		assert.Equal(t, 1, delivered)
		require.Len(t, sub.notifications(), 1)
		assert.Equal(t, "loans", sub.notifications()[0].Channel)
		assert.Equal(t, "loan.approved", sub.notifications()[0].Event)
		assert.False(t, sub.notifications()[0].Timestamp.IsZero())
		assert.Empty(t, other.notifications())
	})

	t.Run("user and channel match delivers exactly one copy", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		conn := &fakeConn{}
		id := hub.Connect(conn)
		require.NoError(t, hub.Subscribe(id, wshub.Subscription{
			UserID:   "user-1",
			Channels: []string{"loans"},
			Roles:    []string{"admin"},
		}))

		delivered := hub.Publish(wshub.Notification{
			UserID:  "user-1",
			Roles:   []string{"admin"},
			Channel: "loans",
			Event:   "loan.approved",
		})
		assert.Equal(t, 1, delivered)
		assert.Len(t, conn.notifications(), 1)
	})

	t.Run("re-subscribing as another user drops the old identity", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		conn := &fakeConn{}
		id := hub.Connect(conn)
		require.NoError(t, hub.Subscribe(id, wshub.Subscription{UserID: "user-1"}))
		require.NoError(t, hub.Subscribe(id, wshub.Subscription{UserID: "user-2"}))

		delivered := hub.Publish(wshub.Notification{UserID: "user-1", Event: "loan.approved"})
		assert.Zero(t, delivered)
		assert.Empty(t, conn.notifications())

		delivered = hub.Publish(wshub.Notification{UserID: "user-2", Event: "loan.approved"})
		assert.Equal(t, 1, delivered)
		assert.Len(t, conn.notifications(), 1)
	})

	t.Run("role targeting", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		admin := &fakeConn{}
		user := &fakeConn{}

		adminID := hub.Connect(admin)
		userID := hub.Connect(user)
		require.NoError(t, hub.Subscribe(adminID, wshub.Subscription{UserID: "user-1", Roles: []string{"admin"}}))
		require.NoError(t, hub.Subscribe(userID, wshub.Subscription{UserID: "user-2"}))

		delivered := hub.Publish(wshub.Notification{Roles: []string{"admin"}, Channel: "system", Event: "system.alert"})
		assert.Equal(t, 1, delivered)
		assert.Len(t, admin.notifications(), 1)
		assert.Empty(t, user.notifications())
	})

	t.Run("failed write disconnects the conn not the publish", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		broken := &fakeConn{}
		healthy := &fakeConn{}

		brokenID := hub.Connect(broken)
		healthyID := hub.Connect(healthy)
		require.NoError(t, hub.Subscribe(brokenID, wshub.Subscription{Channels: []string{"loans"}}))
		require.NoError(t, hub.Subscribe(healthyID, wshub.Subscription{Channels: []string{"loans"}}))

		broken.setFail(true)
		delivered := hub.Publish(wshub.Notification{Channel: "loans", Event: "loan.approved"})

		assert.Equal(t, 1, delivered)
		assert.Len(t, healthy.notifications(), 1)
		assert.True(t, broken.isClosed())
		assert.Equal(t, 1, hub.Connections())
	})
}

func TestHub_Disconnect(t *testing.T) {
	t.Parallel()

	t.Run("purges every index", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		conn := &fakeConn{}
		id := hub.Connect(conn)
		require.NoError(t, hub.Subscribe(id, wshub.Subscription{
			UserID:   "user-1",
			Channels: []string{"loans", "payments"},
			Roles:    []string{"admin"},
		}))

		hub.Disconnect(id)
		assert.True(t, conn.isClosed())
		assert.Zero(t, hub.Connections())

		// A publish touching every former index reaches nothing.
		delivered := hub.Publish(wshub.Notification{
			UserID:  "user-1",
			Roles:   []string{"admin"},
			Channel: "loans",
		})
		assert.Zero(t, delivered)
		delivered = hub.Publish(wshub.Notification{Channel: "payments"})
		assert.Zero(t, delivered)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		id := hub.Connect(&fakeConn{})
		hub.Disconnect(id)
		hub.Disconnect(id)
	})
}

func TestHub_Unsubscribe(t *testing.T) {
	t.Parallel()

	t.Run("specific channels", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		conn := &fakeConn{}
		id := hub.Connect(conn)
		require.NoError(t, hub.Subscribe(id, wshub.Subscription{Channels: []string{"loans", "payments"}}))

		require.NoError(t, hub.Unsubscribe(id, "loans"))
		assert.Zero(t, hub.Publish(wshub.Notification{Channel: "loans"}))
		assert.Equal(t, 1, hub.Publish(wshub.Notification{Channel: "payments"}))
	})

	t.Run("all channels when none named", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		conn := &fakeConn{}
		id := hub.Connect(conn)
		require.NoError(t, hub.Subscribe(id, wshub.Subscription{UserID: "user-1", Channels: []string{"loans", "payments"}}))

		require.NoError(t, hub.Unsubscribe(id))
		assert.Zero(t, hub.Publish(wshub.Notification{Channel: "loans"}))
		assert.Zero(t, hub.Publish(wshub.Notification{Channel: "payments"}))

		// User targeting still works; only channels were dropped.
		assert.Equal(t, 1, hub.Publish(wshub.Notification{UserID: "user-1"}))
	})

	t.Run("unknown connection", func(t *testing.T) {
		t.Parallel()

		hub := wshub.NewHub()
		require.ErrorIs(t, hub.Unsubscribe("missing"), wshub.ErrConnectionNotFound)
	})
}

func TestHub_Liveness(t *testing.T) {
	t.Parallel()

	hub := wshub.NewHub(wshub.WithHeartbeatInterval(20 * time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	silent := &fakeConn{}
	chatty := &fakeConn{}
	silentID := hub.Connect(silent)
	chattyID := hub.Connect(chatty)
	require.NoError(t, hub.Subscribe(silentID, wshub.Subscription{Channels: []string{"loans"}}))
	require.NoError(t, hub.Subscribe(chattyID, wshub.Subscription{Channels: []string{"loans"}}))

	// Keep one connection heartbeating; the silent one must be reaped
	// after missing a full interval.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			hub.MarkAlive(chattyID)
			time.Sleep(10 * time.Millisecond)
		}
	}()
	<-done

	require.Eventually(t, silent.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, hub.Connections())
	assert.False(t, chatty.isClosed())

	// The survivor was pinged.
	chatty.mu.Lock()
	var pinged bool
	for _, f := range chatty.frames {
		if f.Type == wshub.FramePing {
			pinged = true
		}
	}
	chatty.mu.Unlock()
	assert.True(t, pinged)
}
