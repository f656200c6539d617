package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/message"
	"github.com/dmitrymomot/notifykit/pkg/provider"
)

// DefaultSendTimeout bounds a single provider send call.
const DefaultSendTimeout = 5 * time.Second

// Retrier schedules a later re-delivery for a failed message. Satisfied by
// *RetryScheduler; held as an interface so the router and the scheduler can
// be constructed in either order.
type Retrier interface {
	ScheduleRetry(msg *message.Message)
}

// Router moves a pending message through one delivery attempt: mark it
// processing, pick a provider, send with a bounded timeout, and record the
// outcome. Failed attempts with retry budget left are handed to the
// retrier; the returned error reports the attempt outcome to the caller
// but the message state is already settled either way.
type Router struct {
	manager     *message.Manager
	registry    *provider.Registry
	retrier     Retrier
	logger      *slog.Logger
	sendTimeout time.Duration
	now         func() time.Time
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithSendTimeout overrides the per-send provider timeout.
func WithSendTimeout(d time.Duration) RouterOption {
	return func(r *Router) {
		if d > 0 {
			r.sendTimeout = d
		}
	}
}

// WithRouterLogger sets the logger for the Router.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRouterClock overrides the time source, mainly for tests.
func WithRouterClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRouter creates a delivery router.
func NewRouter(manager *message.Manager, registry *provider.Registry, opts ...RouterOption) (*Router, error) {
	if manager == nil {
		return nil, ErrManagerNil
	}
	if registry == nil {
		return nil, ErrRegistryNil
	}
	r := &Router{
		manager:     manager,
		registry:    registry,
		logger:      slog.Default(),
		sendTimeout: DefaultSendTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// SetRetrier wires the retry scheduler in after construction. The router
// and the scheduler reference each other, so one of them has to be bound
// late.
func (r *Router) SetRetrier(retrier Retrier) {
	r.retrier = retrier
}

// Dispatch performs one delivery attempt for the message. When every
// provider for the channel is down or rate-limited, the attempt fails as
// retryable without contacting any sender.
func (r *Router) Dispatch(ctx context.Context, msg *message.Message) error {
	m, err := r.manager.Transition(ctx, msg.ID, message.StatusProcessing, message.TransitionFields{})
	if err != nil {
		return err
	}

	p, err := r.registry.Select(ctx, m.Channel)
	if err != nil {
		if errors.Is(err, provider.ErrProviderUnavailable) {
			return r.fail(ctx, m, "", "no provider available: "+err.Error())
		}
		return err
	}

	sender, err := r.registry.Sender(p.Name)
	if err != nil {
		return r.fail(ctx, m, p.Name, "sender not configured: "+err.Error())
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.sendTimeout)
	defer cancel()

	providerMessageID, sendErr := sender.Send(sendCtx, m.Recipient.Address(m.Channel), m.Subject, m.Body)

	if usageErr := r.registry.RecordUsage(p.ID); usageErr != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to record provider usage",
			slog.String("provider_id", p.ID),
			logger.Error(usageErr),
		)
	}

	if sendErr != nil {
		r.appendAttempt(ctx, m.ID, message.Attempt{
			Timestamp: r.now(),
			Provider:  p.Name,
			RawStatus: "error",
			Response:  sendErr.Error(),
		})
		return r.fail(ctx, m, p.Name, sendErr.Error())
	}

	r.appendAttempt(ctx, m.ID, message.Attempt{
		Timestamp: r.now(),
		Provider:  p.Name,
		RawStatus: "sent",
		Response:  providerMessageID,
	})

	if _, err := r.manager.Transition(ctx, m.ID, message.StatusSent, message.TransitionFields{
		Provider:          p.Name,
		ProviderMessageID: providerMessageID,
	}); err != nil {
		return err
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "message sent",
		logger.MessageID(m.ID),
		logger.Channel(string(m.Channel)),
		logger.Provider(p.Name),
	)
	return nil
}

// fail records the failed attempt and schedules a retry when budget
// remains. The returned error carries the failure to the caller; the
// message itself is already parked as failed.
func (r *Router) fail(ctx context.Context, m *message.Message, providerName, reason string) error {
	failed, err := r.manager.Transition(ctx, m.ID, message.StatusFailed, message.TransitionFields{
		Provider:     providerName,
		ErrorMessage: reason,
	})
	if err != nil {
		return err
	}

	r.logger.LogAttrs(ctx, slog.LevelWarn, "delivery attempt failed",
		logger.MessageID(m.ID),
		logger.Channel(string(m.Channel)),
		slog.String("reason", reason),
		logger.RetryCount(failed.RetryCount),
	)

	if failed.RetryCount < failed.MaxRetries && r.retrier != nil {
		r.retrier.ScheduleRetry(failed)
	}
	return fmt.Errorf("%w: %s", ErrDeliveryFailed, reason)
}

func (r *Router) appendAttempt(ctx context.Context, messageID string, attempt message.Attempt) {
	if err := r.manager.AppendAttempt(ctx, messageID, attempt); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to append delivery attempt",
			logger.MessageID(messageID),
			logger.Error(err),
		)
	}
}
