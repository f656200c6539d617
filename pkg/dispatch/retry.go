package dispatch

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/message"
)

// Retry backoff defaults: 60s doubling up to an hour.
const (
	DefaultInitialDelay      = 60 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultMaxDelay          = 3600 * time.Second
)

// RetryScheduler re-enqueues failed messages after an exponential backoff.
// Each pending retry is a cancellable delayed task keyed by message id; on
// firing it bumps the retry count, moves the message failed → pending and
// resubmits it to the router.
type RetryScheduler struct {
	manager    *message.Manager
	router     *Router
	scheduler  *Scheduler
	logger     *slog.Logger
	initial    time.Duration
	multiplier float64
	max        time.Duration
}

// RetryOption configures a RetryScheduler.
type RetryOption func(*RetryScheduler)

// WithBackoff overrides the backoff curve parameters.
func WithBackoff(initial time.Duration, multiplier float64, max time.Duration) RetryOption {
	return func(s *RetryScheduler) {
		if initial > 0 {
			s.initial = initial
		}
		if multiplier >= 1 {
			s.multiplier = multiplier
		}
		if max > 0 {
			s.max = max
		}
	}
}

// WithRetryLogger sets the logger for the RetryScheduler.
func WithRetryLogger(l *slog.Logger) RetryOption {
	return func(s *RetryScheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRetryScheduler creates a retry scheduler bound to the router and
// wires itself in as the router's retrier.
func NewRetryScheduler(manager *message.Manager, router *Router, opts ...RetryOption) (*RetryScheduler, error) {
	if manager == nil {
		return nil, ErrManagerNil
	}
	if router == nil {
		return nil, ErrRouterNil
	}
	s := &RetryScheduler{
		manager:    manager,
		router:     router,
		scheduler:  NewScheduler(),
		logger:     slog.Default(),
		initial:    DefaultInitialDelay,
		multiplier: DefaultBackoffMultiplier,
		max:        DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	router.SetRetrier(s)
	return s, nil
}

// Delay returns the backoff before retry attempt n:
// min(initial × multiplier^n, max).
func (s *RetryScheduler) Delay(retryCount int) time.Duration {
	delay := time.Duration(float64(s.initial) * math.Pow(s.multiplier, float64(retryCount)))
	if delay > s.max || delay <= 0 {
		return s.max
	}
	return delay
}

// ScheduleRetry registers a delayed re-delivery for the failed message.
// Re-scheduling the same message replaces the pending task.
func (s *RetryScheduler) ScheduleRetry(msg *message.Message) {
	delay := s.Delay(msg.RetryCount)
	id := msg.ID

	s.logger.Info("retry scheduled",
		logger.MessageID(id),
		logger.RetryCount(msg.RetryCount),
		logger.Duration(delay),
	)

	s.scheduler.Register(id, delay, func() {
		s.fire(id)
	})
}

// Cancel removes a pending retry for the message id. Implements the
// manager's RetryCanceller.
func (s *RetryScheduler) Cancel(messageID string) bool {
	return s.scheduler.Cancel(messageID)
}

// Stop drops every pending retry. Messages stay failed and queryable.
func (s *RetryScheduler) Stop() {
	s.scheduler.Stop()
}

func (s *RetryScheduler) fire(id string) {
	ctx := context.Background()

	msg, err := s.manager.Get(ctx, id)
	if err != nil {
		s.logger.Error("retry fired for unknown message", logger.MessageID(id), logger.Error(err))
		return
	}

	next := msg.RetryCount + 1
	m, err := s.manager.Transition(ctx, id, message.StatusPending, message.TransitionFields{
		RetryCount: &next,
	})
	if err != nil {
		// The message moved on while the timer was pending (cancelled or
		// already re-dispatched); nothing to do.
		s.logger.Warn("retry re-enqueue skipped", logger.MessageID(id), logger.Error(err))
		return
	}

	if err := s.router.Dispatch(ctx, m); err != nil {
		s.logger.Warn("retry attempt failed", logger.MessageID(id), logger.RetryCount(m.RetryCount), logger.Error(err))
	}
}
