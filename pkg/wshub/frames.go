package wshub

import (
	"encoding/json"
	"time"
)

// Client-to-server frame types.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FrameHeartbeat   = "heartbeat"
)

// Server-to-client frame types.
const (
	FrameNotification          = "notification"
	FrameSubscriptionSuccess   = "subscription_success"
	FrameUnsubscriptionSuccess = "unsubscription_success"
	FrameError                 = "error"
	FramePing                  = "ping"
	FrameHeartbeatAck          = "heartbeat_ack"
)

// ClientFrame is a raw frame read from the socket. The payload shape
// depends on the type.
type ClientFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload is the payload of a subscribe frame.
type SubscribePayload struct {
	UserID   string   `json:"userId,omitempty"`
	Channels []string `json:"channels"`
	Roles    []string `json:"roles,omitempty"`
}

// UnsubscribePayload is the payload of an unsubscribe frame. An empty
// channel list drops every channel subscription.
type UnsubscribePayload struct {
	Channels []string `json:"channels,omitempty"`
}

// ServerFrame is a frame written to the socket. Every server frame carries
// a timestamp.
type ServerFrame struct {
	Type      string    `json:"type"`
	Channel   string    `json:"channel,omitempty"`
	Event     string    `json:"event,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Channels  []string  `json:"channels,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
