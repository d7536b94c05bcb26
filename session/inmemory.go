package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
)

// InMemoryStore implements session storage using in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Record
}

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Record),
	}
}

// Save saves a session to the store
func (s *InMemoryStore) Save(ctx context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("session record cannot be nil: %w", errorskg.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[record.ID] = record.Clone()
	return nil
}

// Load loads a session from the store
func (s *InMemoryStore) Load(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, errorskg.NotFound("session", id)
	}
	return sess.Clone(), nil
}

// Delete removes a session from the store
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return errorskg.NotFound("session", id)
	}
	delete(s.sessions, id)
	return nil
}

// List returns all session IDs in the store, sorted.
func (s *InMemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of sessions in the store
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Exists checks if a session exists
func (s *InMemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok, nil
}
