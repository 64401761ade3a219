package contacts

import (
	"context"
	"sort"
	"sync"

	"medregistry/pkg/platform/sentinel"
)

// MemoryStore backs tests and single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[string]Contact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contacts: make(map[string]Contact)}
}

func (s *MemoryStore) Create(_ context.Context, c Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[c.Phone]; ok {
		return sentinel.ErrConflict
	}
	s.contacts[c.Phone] = c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, phone string) (Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[phone]
	if !ok {
		return Contact{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Phone < list[j].Phone })
	return list, nil
}

func (s *MemoryStore) Update(_ context.Context, c Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.contacts[c.Phone]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	s.contacts[c.Phone] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[phone]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.contacts, phone)
	return nil
}
