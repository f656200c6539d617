package message

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/preference"
	"github.com/dmitrymomot/notifykit/pkg/template"
)

// DefaultMaxRetries bounds delivery attempts when the caller does not set
// an explicit limit.
const DefaultMaxRetries = 3

// TemplateStore is the slice of the template package the manager needs:
// template lookup for channel/category resolution and rendering.
type TemplateStore interface {
	Get(ctx context.Context, id string) (*template.Template, error)
	Render(ctx context.Context, id string, vars map[string]string) (subject, body string, err error)
}

// PreferenceGate decides whether a recipient may be contacted. Satisfied by
// *preference.Gate.
type PreferenceGate interface {
	CanSend(ctx context.Context, recipient notifykit.Recipient, channel notifykit.Channel, category notifykit.Category) (preference.Decision, error)
}

// Dispatcher receives a freshly created message for delivery. Satisfied by
// the dispatch router; injected as an interface so the message package does
// not depend on the dispatch package.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *Message) error
}

// RetryCanceller removes a pending scheduled retry for a message id.
type RetryCanceller interface {
	Cancel(messageID string) bool
}

// SendScheduler queues the delayed dispatch of a future-scheduled message
// and drops the queued task when the message is cancelled first. Satisfied
// by the dispatch package's delayed-task scheduler.
type SendScheduler interface {
	Register(id string, delay time.Duration, fn func())
	Cancel(id string) bool
}

// Manager owns every mutation of a message's lifecycle. All status changes
// go through Transition, which holds a per-message lock, so a message's
// status only ever moves forward through the state table under a
// single-writer discipline.
type Manager struct {
	storage    Storage
	templates  TemplateStore
	gate       PreferenceGate
	dispatcher Dispatcher
	retries    RetryCanceller
	schedule   SendScheduler
	logger     *slog.Logger
	locks      *keyedMutex
	now        func() time.Time
	maxRetries int
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDispatcher sets the router new messages are handed off to. Without
// one, created messages stay pending until something else picks them up.
func WithDispatcher(d Dispatcher) ManagerOption {
	return func(m *Manager) {
		m.dispatcher = d
	}
}

// WithRetryCanceller sets the scheduler Cancel consults to drop a pending
// retry task for the cancelled message.
func WithRetryCanceller(rc RetryCanceller) ManagerOption {
	return func(m *Manager) {
		m.retries = rc
	}
}

// SetDispatcher wires the delivery router in after construction. The
// manager and the router reference each other, so one of them has to be
// bound late.
func (m *Manager) SetDispatcher(d Dispatcher) {
	m.dispatcher = d
}

// SetRetryCanceller wires the retry scheduler in after construction.
func (m *Manager) SetRetryCanceller(rc RetryCanceller) {
	m.retries = rc
}

// SetSendScheduler wires the delayed-task scheduler future-scheduled
// messages are registered on.
func (m *Manager) SetSendScheduler(s SendScheduler) {
	m.schedule = s
}

// WithSendScheduler sets the scheduler future-scheduled messages are
// registered on. Without one, a future ScheduledFor leaves the message
// pending for an external poller.
func WithSendScheduler(s SendScheduler) ManagerOption {
	return func(m *Manager) {
		m.schedule = s
	}
}

// WithLogger sets the logger for the Manager.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithDefaultMaxRetries overrides the retry limit applied when
// CreateOptions leaves MaxRetries at zero.
func WithDefaultMaxRetries(n int) ManagerOption {
	return func(m *Manager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// NewManager creates a message lifecycle manager.
func NewManager(storage Storage, templates TemplateStore, gate PreferenceGate, opts ...ManagerOption) (*Manager, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if templates == nil {
		return nil, ErrTemplatesNil
	}
	if gate == nil {
		return nil, ErrGateNil
	}
	m := &Manager{
		storage:    storage,
		templates:  templates,
		gate:       gate,
		logger:     slog.Default(),
		locks:      newKeyedMutex(),
		now:        time.Now,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create validates the recipient against the preference gate, renders the
// template, and persists the message as pending. The gate runs before any
// persistence: a denied recipient never produces an undeliverable record.
// Unless ScheduledFor is in the future, the message is immediately handed
// to the dispatcher; a future ScheduledFor registers a delayed dispatch on
// the send scheduler instead. Dispatch failures are absorbed by the retry
// machinery and do not fail Create.
func (m *Manager) Create(ctx context.Context, recipient notifykit.Recipient, templateID string, vars map[string]string, opts CreateOptions) (*Message, error) {
	if templateID == "" {
		return nil, fmt.Errorf("%w: template id is required", ErrValidation)
	}

	tpl, err := m.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if recipient.Address(tpl.Type) == "" {
		return nil, fmt.Errorf("%w: recipient has no %s address", ErrValidation, tpl.Type)
	}

	decision, err := m.gate.CanSend(ctx, recipient, tpl.Type, tpl.Category)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrPreferenceDenied, decision.Reason)
	}

	subject, body, err := m.templates.Render(ctx, templateID, vars)
	if err != nil {
		return nil, err
	}

	now := m.now()
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = m.maxRetries
	}
	priority := opts.Priority
	if priority == "" {
		priority = notifykit.PriorityMedium
	}

	msg := Message{
		ID:              uuid.New().String(),
		UserID:          recipient.UserID,
		TemplateID:      templateID,
		Channel:         tpl.Type,
		Category:        tpl.Category,
		Priority:        priority,
		Status:          StatusPending,
		Recipient:       recipient,
		Subject:         subject,
		Body:            body,
		Variables:       vars,
		ScheduledFor:    opts.ScheduledFor,
		MaxRetries:      maxRetries,
		SourceSystem:    opts.SourceSystem,
		SourceReference: opts.SourceReference,
		Tags:            opts.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := m.storage.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	// Past or absent ScheduledFor means dispatch now; a future schedule is
	// registered as a delayed task keyed by the message id.
	if m.dispatcher != nil {
		switch {
		case msg.ScheduledFor == nil || !msg.ScheduledFor.After(now):
			if err := m.dispatcher.Dispatch(ctx, &msg); err != nil {
				m.logger.LogAttrs(ctx, slog.LevelError, "dispatch hand-off failed",
					logger.MessageID(msg.ID),
					logger.Error(err),
				)
			}
		case m.schedule != nil:
			id := msg.ID
			m.schedule.Register(id, msg.ScheduledFor.Sub(now), func() {
				m.dispatchScheduled(id)
			})
		}
	}

	return &msg, nil
}

// dispatchScheduled hands a message whose schedule came due to the
// dispatcher. It runs on the scheduler's timer goroutine, detached from
// the Create call that registered it.
func (m *Manager) dispatchScheduled(id string) {
	ctx := context.Background()

	msg, err := m.storage.Get(ctx, id)
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "scheduled send fired for unknown message",
			logger.MessageID(id),
			logger.Error(err),
		)
		return
	}
	if msg.Status != StatusPending {
		m.logger.LogAttrs(ctx, slog.LevelDebug, "scheduled send skipped, message moved on",
			logger.MessageID(id),
			slog.String("status", string(msg.Status)),
		)
		return
	}

	if err := m.dispatcher.Dispatch(ctx, msg); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "scheduled dispatch failed",
			logger.MessageID(id),
			logger.Error(err),
		)
	}
}

// TransitionFields carries the optional record updates applied together
// with a status change.
type TransitionFields struct {
	Provider          string
	ProviderMessageID string
	ErrorMessage      string
	RetryCount        *int
}

// Transition is the sole mutation entry point for message status. It
// serializes per message id, enforces the state table, and stamps the
// lifecycle timestamps. A failed message with retries exhausted is
// terminal; its re-enqueue edge is rejected like any other illegal move.
func (m *Manager) Transition(ctx context.Context, id string, to Status, fields TransitionFields) (*Message, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	unlock := m.locks.Lock(id)
	defer unlock()

	msg, err := m.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if msg.Terminal() || !msg.Status.CanTransitionTo(to) {
		return nil, &InvalidTransitionError{MessageID: id, From: msg.Status, To: to}
	}

	now := m.now()
	from := msg.Status
	msg.Status = to
	msg.UpdatedAt = now

	if fields.Provider != "" {
		msg.Provider = fields.Provider
	}
	if fields.ProviderMessageID != "" {
		msg.ProviderMessageID = fields.ProviderMessageID
	}
	if fields.ErrorMessage != "" {
		msg.ErrorMessage = fields.ErrorMessage
	}
	if fields.RetryCount != nil {
		if *fields.RetryCount < 0 || *fields.RetryCount > msg.MaxRetries {
			return nil, fmt.Errorf("%w: retry count %d out of range [0,%d]", ErrValidation, *fields.RetryCount, msg.MaxRetries)
		}
		msg.RetryCount = *fields.RetryCount
	}

	switch to {
	case StatusSent:
		msg.SentAt = &now
	case StatusDelivered:
		msg.DeliveredAt = &now
	case StatusFailed:
		msg.FailedAt = &now
	}

	if err := m.storage.Save(ctx, *msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	m.logger.LogAttrs(ctx, slog.LevelDebug, "message status changed",
		logger.MessageID(id),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		logger.RetryCount(msg.RetryCount),
	)
	return msg, nil
}

// Cancel moves a pending message to cancelled and removes any scheduled
// retry or delayed-send task for it. A message already handed to a
// provider cannot be cancelled.
func (m *Manager) Cancel(ctx context.Context, id string) (*Message, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	msg, err := m.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Status != StatusPending {
		return nil, &InvalidTransitionError{MessageID: id, From: msg.Status, To: StatusCancelled}
	}

	if m.retries != nil {
		m.retries.Cancel(id)
	}
	if m.schedule != nil {
		m.schedule.Cancel(id)
	}

	now := m.now()
	msg.Status = StatusCancelled
	msg.UpdatedAt = now

	if err := m.storage.Save(ctx, *msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	return msg, nil
}

// Get returns the message by id.
func (m *Manager) Get(ctx context.Context, id string) (*Message, error) {
	return m.storage.Get(ctx, id)
}

// AppendAttempt records one delivery attempt in the message's append-only
// log.
func (m *Manager) AppendAttempt(ctx context.Context, messageID string, attempt Attempt) error {
	return m.storage.AppendAttempt(ctx, messageID, attempt)
}

// Attempts returns the message's delivery log in append order.
func (m *Manager) Attempts(ctx context.Context, messageID string) ([]Attempt, error) {
	return m.storage.Attempts(ctx, messageID)
}
