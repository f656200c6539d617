package provider

import "context"

// Sender is the collaborator interface every external delivery service is
// adapted to. Subject may be empty for channels without one (sms, push).
// The returned id is the provider's own message identifier, used later to
// correlate delivery webhooks.
type Sender interface {
	Send(ctx context.Context, address, subject, body string) (providerMessageID string, err error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, address, subject, body string) (string, error)

func (f SenderFunc) Send(ctx context.Context, address, subject, body string) (string, error) {
	return f(ctx, address, subject, body)
}
