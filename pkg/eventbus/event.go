package eventbus

import "time"

// Domain event types produced by the surrounding business services. The
// dotted prefix groups events into families; the bus itself treats types
// as opaque strings, the mapping layer keys on them.
const (
	EventLoanApproved  = "loan.approved"
	EventLoanRejected  = "loan.rejected"
	EventLoanDisbursed = "loan.disbursed"

	EventPaymentReceived = "payment.received"
	EventPaymentFailed   = "payment.failed"
	EventPaymentOverdue  = "payment.overdue"

	EventUserRegistered = "user.registered"
	EventUserVerified   = "user.verified"

	EventSystemAlert       = "system.alert"
	EventSystemMaintenance = "system.maintenance"
)

// Event is one domain occurrence flowing through the bus. Payload holds
// the typed variant data (LoanPayload, PaymentPayload, ...).
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LoanPayload carries loan.* event data.
type LoanPayload struct {
	LoanID string  `json:"loan_id"`
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

// PaymentPayload carries payment.* event data.
type PaymentPayload struct {
	PaymentID string  `json:"payment_id"`
	LoanID    string  `json:"loan_id,omitempty"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
}

// UserPayload carries user.* event data.
type UserPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// SystemPayload carries system.* event data.
type SystemPayload struct {
	Message  string `json:"message"`
	Severity string `json:"severity,omitempty"`
}
