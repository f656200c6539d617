package wshub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// wsConn adapts a gorilla connection to the hub's Conn interface. Gorilla
// allows only one concurrent writer, so every write goes through the
// mutex: the hub's publishes, the read pump's replies and the liveness
// pings all share it.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(v)
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// Handler upgrades HTTP requests to websocket connections and runs the
// frame protocol against the hub. Clients send subscribe, unsubscribe and
// heartbeat frames; the server answers with acks, pushes notification
// frames, and pings on the liveness interval.
func Handler(hub *Hub, opts ...HandlerOption) http.Handler {
	cfg := handlerConfig{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := cfg.upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.logger.Warn("websocket upgrade failed", logger.Error(err))
			return
		}

		conn := &wsConn{conn: socket}
		id := hub.Connect(conn)
		if id == "" {
			_ = socket.Close()
			return
		}

		socket.SetReadLimit(maxMessageSize)
		socket.SetPongHandler(func(string) error {
			hub.MarkAlive(id)
			return nil
		})

		readPump(hub, cfg.logger, id, conn, socket)
	})
}

// handlerConfig carries Handler tuning.
type handlerConfig struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// HandlerOption configures the websocket Handler.
type HandlerOption func(*handlerConfig)

// WithHandlerLogger sets the logger for the Handler.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(cfg *handlerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithCheckOrigin overrides the upgrade origin check.
func WithCheckOrigin(check func(r *http.Request) bool) HandlerOption {
	return func(cfg *handlerConfig) {
		if check != nil {
			cfg.upgrader.CheckOrigin = check
		}
	}
}

// readPump decodes client frames until the socket dies, then disconnects
// the hub-side record.
func readPump(hub *Hub, log *slog.Logger, id string, conn *wsConn, socket *websocket.Conn) {
	defer hub.Disconnect(id)

	for {
		var frame ClientFrame
		if err := socket.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed",
					slog.String("connection_id", id),
					logger.Error(err),
				)
			}
			return
		}
		hub.MarkAlive(id)

		switch frame.Type {
		case FrameSubscribe:
			var payload SubscribePayload
			if err := json.Unmarshal(frame.Payload, &payload); err != nil {
				writeError(conn, "invalid subscribe payload")
				continue
			}
			if err := hub.Subscribe(id, Subscription{
				UserID:   payload.UserID,
				Channels: payload.Channels,
				Roles:    payload.Roles,
			}); err != nil {
				writeError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(ServerFrame{
				Type:      FrameSubscriptionSuccess,
				Channels:  payload.Channels,
				Timestamp: time.Now(),
			})

		case FrameUnsubscribe:
			var payload UnsubscribePayload
			if len(frame.Payload) > 0 {
				if err := json.Unmarshal(frame.Payload, &payload); err != nil {
					writeError(conn, "invalid unsubscribe payload")
					continue
				}
			}
			if err := hub.Unsubscribe(id, payload.Channels...); err != nil {
				writeError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(ServerFrame{
				Type:      FrameUnsubscriptionSuccess,
				Channels:  payload.Channels,
				Timestamp: time.Now(),
			})

		case FrameHeartbeat:
			_ = conn.WriteJSON(ServerFrame{
				Type:      FrameHeartbeatAck,
				Timestamp: time.Now(),
			})

		default:
			writeError(conn, "unknown frame type: "+frame.Type)
		}
	}
}

func writeError(conn *wsConn, msg string) {
	_ = conn.WriteJSON(ServerFrame{
		Type:      FrameError,
		Error:     msg,
		Timestamp: time.Now(),
	})
}
