package template

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Storage handles template persistence and retrieval.
type Storage interface {
	// Create stores a new template version.
	Create(ctx context.Context, tpl Template) error

	// Get retrieves a template by id.
	Get(ctx context.Context, id string) (*Template, error)

	// GetByName retrieves the latest version of a named template.
	GetByName(ctx context.Context, name string) (*Template, error)

	// List returns templates matching the options.
	List(ctx context.Context, opts ListOptions) ([]Template, error)

	// Save persists field changes that do not create a new version (active flag).
	Save(ctx context.Context, tpl Template) error
}

// Store manages template versions and rendering on top of a Storage.
type Store struct {
	storage Storage
	logger  *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for the Store.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a template store backed by the given storage.
func NewStore(storage Storage, opts ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	s := &Store{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create validates and stores a new template at version 1.
func (s *Store) Create(ctx context.Context, params CreateParams) (*Template, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	if !params.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown channel type %q", ErrInvalidTemplate, params.Type)
	}
	if !params.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidTemplate, params.Category)
	}
	if params.Body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidTemplate)
	}

	language := params.Language
	if language == "" {
		language = "en"
	}

	now := time.Now()
	tpl := Template{
		ID:        uuid.New().String(),
		Name:      params.Name,
		Type:      params.Type,
		Category:  params.Category,
		Subject:   params.Subject,
		Body:      params.Body,
		Variables: params.Variables,
		Active:    true,
		Language:  language,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(tpl.Variables) == 0 {
		tpl.Variables = Placeholders(tpl)
	}

	if err := s.storage.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to store template: %w", err)
	}
	return &tpl, nil
}

// Get retrieves a template by id.
func (s *Store) Get(ctx context.Context, id string) (*Template, error) {
	return s.storage.Get(ctx, id)
}

// GetByName retrieves the latest version of a named template.
func (s *Store) GetByName(ctx context.Context, name string) (*Template, error) {
	return s.storage.GetByName(ctx, name)
}

// List returns templates matching the options.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Template, error) {
	return s.storage.List(ctx, opts)
}

// Update creates a new version of the template identified by id. The previous
// version is left untouched so messages that referenced it stay reproducible.
func (s *Store) Update(ctx context.Context, id string, params UpdateParams) (*Template, error) {
	prev, err := s.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	next.ID = uuid.New().String()
	next.Version = prev.Version + 1
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = time.Now()
	if params.Subject != nil {
		next.Subject = *params.Subject
	}
	if params.Body != nil {
		next.Body = *params.Body
	}
	if params.Variables != nil {
		next.Variables = params.Variables
	}
	if params.Active != nil {
		next.Active = *params.Active
	}

	if err := s.storage.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to store template version: %w", err)
	}
	return &next, nil
}

// Deactivate marks a template version inactive without creating a new version.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	tpl, err := s.storage.Get(ctx, id)
	if err != nil {
		return err
	}
	if !tpl.Active {
		return nil
	}
	tpl.Active = false
	tpl.UpdatedAt = time.Now()
	return s.storage.Save(ctx, *tpl)
}

// Render loads the template and substitutes the given variables. Placeholders
// without matching variables are left verbatim and logged at warn level.
func (s *Store) Render(ctx context.Context, id string, vars map[string]string) (subject, body string, err error) {
	tpl, err := s.storage.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if !tpl.Active {
		return "", "", fmt.Errorf("%w: %s", ErrTemplateInactive, id)
	}

	subject, body, missing := Render(*tpl, vars)
	if len(missing) > 0 {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "template rendered with unresolved placeholders",
			slog.String("template_id", tpl.ID),
			slog.String("template_name", tpl.Name),
			slog.Any("missing_variables", missing),
		)
	}
	return subject, body, nil
}
