package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/message"
)

// Callback is one delivery status report from a provider webhook.
type Callback struct {
	Provider  string            `json:"provider"`
	MessageID string            `json:"messageId"`
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// LifecycleManager is the slice of the message manager the ingestor
// drives. Satisfied by *message.Manager.
type LifecycleManager interface {
	Get(ctx context.Context, id string) (*message.Message, error)
	Transition(ctx context.Context, id string, to message.Status, fields message.TransitionFields) (*message.Message, error)
	AppendAttempt(ctx context.Context, messageID string, attempt message.Attempt) error
}

// Ingestor maps provider delivery callbacks back onto message state.
// Callbacks about unknown messages and duplicate or out-of-order
// callbacks are absorbed: providers must always see success or they storm
// the endpoint with retries.
type Ingestor struct {
	manager LifecycleManager
	logger  *slog.Logger
	now     func() time.Time
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithLogger sets the logger for the Ingestor.
func WithLogger(l *slog.Logger) IngestorOption {
	return func(i *Ingestor) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) IngestorOption {
	return func(i *Ingestor) {
		if now != nil {
			i.now = now
		}
	}
}

// NewIngestor creates a delivery callback ingestor.
func NewIngestor(manager LifecycleManager, opts ...IngestorOption) (*Ingestor, error) {
	if manager == nil {
		return nil, ErrManagerNil
	}
	i := &Ingestor{
		manager: manager,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// HandleWebhook processes one callback: append the raw report to the
// message's delivery log, then move the message to delivered or failed
// when the canonical status says so. Unknown message ids are logged and
// ignored.
func (i *Ingestor) HandleWebhook(ctx context.Context, cb Callback) error {
	canonical, recognized := Canonical(cb.Status)
	if !recognized {
		i.logger.LogAttrs(ctx, slog.LevelWarn, "unmapped provider status",
			logger.Provider(cb.Provider),
			logger.MessageID(cb.MessageID),
			slog.String("raw_status", cb.Status),
		)
	}

	msg, err := i.manager.Get(ctx, cb.MessageID)
	if err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			i.logger.LogAttrs(ctx, slog.LevelInfo, "callback for unknown message ignored",
				logger.Provider(cb.Provider),
				logger.MessageID(cb.MessageID),
			)
			return nil
		}
		return err
	}

	timestamp := cb.Timestamp
	if timestamp.IsZero() {
		timestamp = i.now()
	}
	if err := i.manager.AppendAttempt(ctx, msg.ID, message.Attempt{
		Timestamp: timestamp,
		Provider:  cb.Provider,
		RawStatus: cb.Status,
		Response:  cb.Metadata["reason"],
	}); err != nil {
		return err
	}

	switch canonical {
	case StatusDelivered:
		i.transition(ctx, msg.ID, message.StatusDelivered, message.TransitionFields{})
	case StatusFailed, StatusBounced:
		reason := cb.Metadata["reason"]
		if reason == "" {
			reason = "provider reported " + string(canonical)
		}
		i.transition(ctx, msg.ID, message.StatusFailed, message.TransitionFields{ErrorMessage: reason})
	}
	return nil
}

// transition applies the status change, absorbing illegal-transition
// errors: duplicate and out-of-order callbacks are a fact of provider
// webhooks, not a failure.
func (i *Ingestor) transition(ctx context.Context, id string, to message.Status, fields message.TransitionFields) {
	if _, err := i.manager.Transition(ctx, id, to, fields); err != nil {
		var invalid *message.InvalidTransitionError
		if errors.As(err, &invalid) {
			i.logger.LogAttrs(ctx, slog.LevelDebug, "callback transition skipped",
				logger.MessageID(id),
				slog.String("from", string(invalid.From)),
				slog.String("to", string(invalid.To)),
			)
			return
		}
		i.logger.LogAttrs(ctx, slog.LevelError, "callback transition failed",
			logger.MessageID(id),
			logger.Error(err),
		)
	}
}
