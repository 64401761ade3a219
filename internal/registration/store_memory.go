package registration

import (
	"context"
	"sync"

	"medregistry/pkg/platform/sentinel"
)

// MemorySessionStore keeps wizard sessions in process. Update holds the
// store lock for the whole read-modify-write, which gives the same
// no-lost-updates guarantee the redis store gets from WATCH.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]WizardSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]WizardSession)}
}

func (s *MemorySessionStore) Get(ctx context.Context, key string) (WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return WizardSession{}, sentinel.ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *MemorySessionStore) Put(ctx context.Context, session WizardSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Key] = cloneSession(session)
	return nil
}

func (s *MemorySessionStore) Update(ctx context.Context, key string, fn func(*WizardSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	working := cloneSession(session)
	if err := fn(&working); err != nil {
		return err
	}
	s.sessions[key] = working
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}

// cloneSession copies the mutable parts so callers cannot alias stored
// state. Profile and certification records are value-copied; the document
// slice gets its own backing array.
func cloneSession(session WizardSession) WizardSession {
	out := session
	if session.PersonalDetails != nil {
		personal := *session.PersonalDetails
		out.PersonalDetails = &personal
	}
	if session.Certification != nil {
		cert := *session.Certification
		out.Certification = &cert
	}
	if session.Documents != nil {
		out.Documents = append([]StagedDocument{}, session.Documents...)
	}
	return out
}
