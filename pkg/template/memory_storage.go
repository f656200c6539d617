package template

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	templates map[string]Template // id -> template
	mu        sync.RWMutex
}

// NewMemoryStorage creates a new in-memory template storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		templates: make(map[string]Template),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, tpl Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tpl.ID == "" {
		return ErrInvalidTemplate
	}
	s.templates[tpl.ID] = tpl
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	// Return a copy to prevent external mutation of stored data
	out := tpl
	return &out, nil
}

func (s *MemoryStorage) GetByName(ctx context.Context, name string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Template
	for _, tpl := range s.templates {
		if tpl.Name != name {
			continue
		}
		if latest == nil || tpl.Version > latest.Version {
			t := tpl
			latest = &t
		}
	}
	if latest == nil {
		return nil, ErrTemplateNotFound
	}
	return latest, nil
}

func (s *MemoryStorage) List(ctx context.Context, opts ListOptions) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		if opts.Type != "" && tpl.Type != opts.Type {
			continue
		}
		if opts.Category != "" && tpl.Category != opts.Category {
			continue
		}
		if opts.OnlyActive && !tpl.Active {
			continue
		}
		out = append(out, tpl)
	}
	return out, nil
}

func (s *MemoryStorage) Save(ctx context.Context, tpl Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[tpl.ID]; !ok {
		return ErrTemplateNotFound
	}
	s.templates[tpl.ID] = tpl
	return nil
}
