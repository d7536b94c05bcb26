package store

import (
	"context"
	"sync"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/member"
)

// InMemoryStore implements member.ProfileSource with a map.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]member.Profile
	lookups  int
}

// NewInMemoryStore creates a store holding the given profiles.
func NewInMemoryStore(profiles ...member.Profile) *InMemoryStore {
	s := &InMemoryStore{profiles: make(map[string]member.Profile, len(profiles))}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *InMemoryStore) Profile(_ context.Context, memberID string) (*member.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	p, ok := s.profiles[memberID]
	if !ok {
		return nil, errorskg.NotFound("member", memberID)
	}
	return &p, nil
}

// Upsert stores a copy of the profile.
func (s *InMemoryStore) Upsert(_ context.Context, p *member.Profile) error {
	if p == nil || p.ID == "" {
		return errorskg.Invalid("profile must have an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = *p
	return nil
}

// Lookups reports how many times Profile has been called.
func (s *InMemoryStore) Lookups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookups
}

var _ member.ProfileSource = (*InMemoryStore)(nil)
