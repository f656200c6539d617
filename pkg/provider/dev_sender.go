package provider

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// DevSender implements Sender for local development and for channels that
// have no production adapter configured (push, whatsapp). It logs each send
// instead of contacting an external service and always succeeds.
type DevSender struct {
	log     *slog.Logger
	channel string
}

// NewDevSender creates a development sender. The channel label is only used
// to distinguish log lines when several dev senders are registered.
func NewDevSender(log *slog.Logger, channel string) *DevSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log, channel: channel}
}

// Send logs the message and returns a generated provider message ID.
func (d *DevSender) Send(ctx context.Context, address, subject, body string) (string, error) {
	id := uuid.New().String()
	d.log.InfoContext(ctx, "dev sender delivered message",
		logger.Component("provider"),
		logger.Channel(d.channel),
		slog.String("address", address),
		slog.String("subject", subject),
		slog.Int("body_length", len(body)),
		slog.String("provider_message_id", id),
	)
	return id, nil
}
