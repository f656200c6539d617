package message

import (
	"time"

	"github.com/dmitrymomot/notifykit"
)

// Message is a single notification through its delivery lifecycle. The
// recipient is snapshotted at creation time so later preference changes do
// not affect an already queued message. Records are never deleted, they
// only expire via the store TTL.
type Message struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id,omitempty"`
	TemplateID string             `json:"template_id,omitempty"`
	Channel    notifykit.Channel  `json:"channel"`
	Category   notifykit.Category `json:"category"`
	Priority   notifykit.Priority `json:"priority"`
	Status     Status             `json:"status"`

	Recipient notifykit.Recipient `json:"recipient"`
	Subject   string              `json:"subject,omitempty"`
	Body      string              `json:"body"`
	Variables map[string]string   `json:"variables,omitempty"`

	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	FailedAt     *time.Time `json:"failed_at,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	Provider          string `json:"provider,omitempty"`
	ProviderMessageID string `json:"provider_message_id,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`

	SourceSystem    string   `json:"source_system,omitempty"`
	SourceReference string   `json:"source_reference,omitempty"`
	Tags            []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the message can never change state again:
// delivered, cancelled, or failed with retries exhausted.
func (m *Message) Terminal() bool {
	switch m.Status {
	case StatusDelivered, StatusCancelled:
		return true
	case StatusFailed:
		return m.RetryCount >= m.MaxRetries
	}
	return false
}

// CreateOptions carries the caller-controlled knobs for Manager.Create.
type CreateOptions struct {
	Priority        notifykit.Priority
	ScheduledFor    *time.Time
	MaxRetries      int
	SourceSystem    string
	SourceReference string
	Tags            []string
}

// Attempt is one entry in a message's append-only delivery log: the raw
// provider status and response as reported, used to reconstruct webhook
// history.
type Attempt struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider,omitempty"`
	RawStatus string    `json:"raw_status"`
	Response  string    `json:"response,omitempty"`
}
