package message

import "errors"

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrValidation       = errors.New("invalid message input")
	ErrPreferenceDenied = errors.New("recipient preferences deny sending")
	ErrStorageNil       = errors.New("storage cannot be nil")
	ErrTemplatesNil     = errors.New("template store cannot be nil")
	ErrGateNil          = errors.New("preference gate cannot be nil")
)
