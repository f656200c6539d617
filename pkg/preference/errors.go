package preference

import "errors"

var (
	// ErrBlacklistNil is returned when a nil blacklist is provided to NewGate.
	ErrBlacklistNil = errors.New("blacklist cannot be nil")

	// ErrBlacklistUnavailable wraps storage failures during blacklist lookups.
	ErrBlacklistUnavailable = errors.New("blacklist lookup failed")
)
