package dispatch

import "errors"

var (
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrManagerNil     = errors.New("message manager cannot be nil")
	ErrRegistryNil    = errors.New("provider registry cannot be nil")
	ErrRouterNil      = errors.New("router cannot be nil")
)
