package provider

import "errors"

var (
	// ErrProviderUnavailable is returned when no configured provider for the
	// channel is healthy and under its rate limits. The condition is
	// transient; callers should treat it as retryable.
	ErrProviderUnavailable = errors.New("no provider available for channel")

	// ErrProviderNotFound is returned when the given provider id is unknown.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderExists is returned when registering a duplicate provider id.
	ErrProviderExists = errors.New("provider already registered")

	// ErrInvalidProvider is returned when required provider fields are missing.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrSenderNotFound is returned when no sender is bound to a provider name.
	ErrSenderNotFound = errors.New("no sender bound to provider")

	// ErrSendFailed wraps errors returned by the underlying delivery service.
	ErrSendFailed = errors.New("provider send failed")

	// ErrInvalidConfig is returned when a sender is constructed with
	// incomplete configuration.
	ErrInvalidConfig = errors.New("invalid sender config")
)
