package message

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage is an in-memory Storage for tests and local development.
type MemoryStorage struct {
	mu       sync.RWMutex
	messages map[string]Message
	attempts map[string][]Attempt
}

// NewMemoryStorage creates an empty in-memory message storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		messages: make(map[string]Message),
		attempts: make(map[string][]Attempt),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[msg.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrValidation, msg.ID)
	}
	s.messages[msg.ID] = msg
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	out := msg
	return &out, nil
}

func (s *MemoryStorage) Save(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[msg.ID]; !ok {
		return ErrMessageNotFound
	}
	s.messages[msg.ID] = msg
	return nil
}

func (s *MemoryStorage) AppendAttempt(ctx context.Context, messageID string, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[messageID] = append(s.attempts[messageID], attempt)
	return nil
}

func (s *MemoryStorage) Attempts(ctx context.Context, messageID string) ([]Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Attempt, len(s.attempts[messageID]))
	copy(out, s.attempts[messageID])
	return out, nil
}

// Len reports the number of stored messages. Test helper.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
