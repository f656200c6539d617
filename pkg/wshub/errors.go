package wshub

import "errors"

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionSend     = errors.New("failed to write to connection")
	ErrHubClosed          = errors.New("hub is closed")
)
