package message

import "fmt"

// Status is a notification message's position in its delivery lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the full state table. pending -> processing -> sent ->
// delivered is the happy path; sent -> failed covers provider callbacks
// reporting a bounce after acceptance; failed -> pending is the retry
// re-enqueue and pending -> cancelled covers scheduled messages cancelled
// before dispatch. delivered and cancelled have no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusSent, StatusFailed},
	StatusSent:       {StatusDelivered, StatusFailed},
	StatusFailed:     {StatusPending},
}

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSent, StatusDelivered, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state table allows moving to the
// target status. It does not know about retry exhaustion; the Manager
// layers that check on top.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports an attempt to move a message between
// states the lifecycle does not connect. It indicates a programming error
// in the caller and should never surface to API consumers.
type InvalidTransitionError struct {
	MessageID string
	From      Status
	To        Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition for message %s: %s -> %s", e.MessageID, e.From, e.To)
}
