package message

import "context"

// Storage persists messages and their append-only delivery logs.
// Implementations must treat messages as immutable snapshots: Get returns a
// copy the caller may mutate freely, and Save overwrites the stored record.
type Storage interface {
	Create(ctx context.Context, msg Message) error
	Get(ctx context.Context, id string) (*Message, error)
	Save(ctx context.Context, msg Message) error
	AppendAttempt(ctx context.Context, messageID string, attempt Attempt) error
	Attempts(ctx context.Context, messageID string) ([]Attempt, error)
}
