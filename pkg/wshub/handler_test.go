package wshub_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/wshub"
)

func dialTestHub(t *testing.T, hub *wshub.Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(wshub.Handler(hub))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wshub.ServerFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame wshub.ServerFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func writeFrame(t *testing.T, conn *websocket.Conn, frameType string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wshub.ClientFrame{Type: frameType, Payload: raw}))
}

func TestHandler_SubscribeAndNotify(t *testing.T) {
	t.Parallel()

	hub := wshub.NewHub()
	conn := dialTestHub(t, hub)

	writeFrame(t, conn, wshub.FrameSubscribe, wshub.SubscribePayload{
		UserID:   "user-1",
		Channels: []string{"loans"},
	})

	ack := readFrame(t, conn)
	assert.Equal(t, wshub.FrameSubscriptionSuccess, ack.Type)
	assert.Equal(t, []string{"loans"}, ack.Channels)
	assert.False(t, ack.Timestamp.IsZero())

	// The hub registered the subscription before acking, so publish after
	// the ack is safe.
	delivered := hub.Publish(wshub.Notification{
		Channel: "loans",
		Event:   "loan.approved",
		Payload: map[string]any{"loanId": "loan-42"},
	})
	require.Equal(t, 1, delivered)

	frame := readFrame(t, conn)
	assert.Equal(t, wshub.FrameNotification, frame.Type)
	assert.Equal(t, "loans", frame.Channel)
	assert.Equal(t, "loan.approved", frame.Event)
}

func TestHandler_Heartbeat(t *testing.T) {
	t.Parallel()

	hub := wshub.NewHub()
	conn := dialTestHub(t, hub)

	require.NoError(t, conn.WriteJSON(wshub.ClientFrame{Type: wshub.FrameHeartbeat}))
	frame := readFrame(t, conn)
	assert.Equal(t, wshub.FrameHeartbeatAck, frame.Type)
}

func TestHandler_Unsubscribe(t *testing.T) {
	t.Parallel()

	hub := wshub.NewHub()
	conn := dialTestHub(t, hub)

	writeFrame(t, conn, wshub.FrameSubscribe, wshub.SubscribePayload{Channels: []string{"loans"}})
	require.Equal(t, wshub.FrameSubscriptionSuccess, readFrame(t, conn).Type)

	writeFrame(t, conn, wshub.FrameUnsubscribe, wshub.UnsubscribePayload{Channels: []string{"loans"}})
	ack := readFrame(t, conn)
	assert.Equal(t, wshub.FrameUnsubscriptionSuccess, ack.Type)

	assert.Zero(t, hub.Publish(wshub.Notification{Channel: "loans"}))
}

func TestHandler_UnknownFrame(t *testing.T) {
	t.Parallel()

	hub := wshub.NewHub()
	conn := dialTestHub(t, hub)

	require.NoError(t, conn.WriteJSON(wshub.ClientFrame{Type: "bogus"}))
	frame := readFrame(t, conn)
	assert.Equal(t, wshub.FrameError, frame.Type)
	assert.Contains(t, frame.Error, "bogus")
}

func TestHandler_ClientCloseDisconnects(t *testing.T) {
	t.Parallel()

	hub := wshub.NewHub()
	conn := dialTestHub(t, hub)

	writeFrame(t, conn, wshub.FrameSubscribe, wshub.SubscribePayload{Channels: []string{"loans"}})
	require.Equal(t, wshub.FrameSubscriptionSuccess, readFrame(t, conn).Type)
	require.Equal(t, 1, hub.Connections())

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.Connections() == 0 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, hub.Publish(wshub.Notification{Channel: "loans"}))
}
