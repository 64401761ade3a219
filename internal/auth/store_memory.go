package auth

import (
	"context"
	"sync"
	"time"

	"medregistry/pkg/platform/sentinel"
)

// In-memory stores back tests and single-process deployments. They enforce
// the same uniqueness rules as the SQL schema.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]User // keyed by ID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]User)}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Phone == user.Phone || existing.Email == user.Email || existing.Username == user.Username {
			return sentinel.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryUserStore) GetUserByPhone(_ context.Context, phone string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

func (s *MemoryUserStore) GetUserByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return User{}, sentinel.ErrNotFound
}

type otpEntry struct {
	challenge Challenge
	expiresAt time.Time
}

// MemoryOTPStore expires entries lazily on read.
type MemoryOTPStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]otpEntry
	now     func() time.Time
}

func NewMemoryOTPStore(ttl time.Duration) *MemoryOTPStore {
	return &MemoryOTPStore{
		ttl:     ttl,
		entries: make(map[string]otpEntry),
		now:     time.Now,
	}
}

func (s *MemoryOTPStore) Put(_ context.Context, phone string, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = otpEntry{challenge: ch, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, phone string) (Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[phone]
	if !ok {
		return Challenge{}, sentinel.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, phone)
		return Challenge{}, sentinel.ErrNotFound
	}
	return entry.challenge, nil
}

func (s *MemoryOTPStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
	return nil
}
