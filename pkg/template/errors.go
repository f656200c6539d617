package template

import "errors"

var (
	// ErrTemplateNotFound is returned when no template matches the given id or name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateInactive is returned when rendering is attempted against a deactivated template.
	ErrTemplateInactive = errors.New("template is not active")

	// ErrInvalidTemplate is returned when required template fields are missing or malformed.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrStorageNil is returned when a nil storage is provided to NewStore.
	ErrStorageNil = errors.New("storage cannot be nil")
)
