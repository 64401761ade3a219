package doctors

import (
	"context"
	"sort"
	"sync"

	"medregistry/pkg/platform/sentinel"
)

// MemoryStore keeps committed records in process. It enforces the same
// uniqueness rules as the postgres store so tests and dev mode observe
// identical conflict behavior. It intentionally favors clarity over
// performance.
type MemoryStore struct {
	mu    sync.RWMutex
	state memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

// RunInTx applies fn to a copy of the state and swaps it in only when fn
// succeeds, so a failed commit leaves nothing behind.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *MemoryStore) CreateProfile(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateProfile(ctx, p)
}

func (s *MemoryStore) GetProfile(ctx context.Context, contact string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetProfile(ctx, contact)
}

func (s *MemoryStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ListProfiles(ctx)
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpdateProfile(ctx, p)
}

func (s *MemoryStore) DeleteProfile(ctx context.Context, contact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeleteProfile(ctx, contact)
}

func (s *MemoryStore) CreateCertification(ctx context.Context, c Certification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateCertification(ctx, c)
}

func (s *MemoryStore) GetCertification(ctx context.Context, contact string) (Certification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetCertification(ctx, contact)
}

func (s *MemoryStore) UpdateCertification(ctx context.Context, c Certification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpdateCertification(ctx, c)
}

func (s *MemoryStore) DeleteCertification(ctx context.Context, contact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeleteCertification(ctx, contact)
}

func (s *MemoryStore) CreateDocument(ctx context.Context, d Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateDocument(ctx, d)
}

func (s *MemoryStore) ListDocuments(ctx context.Context, contact string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ListDocuments(ctx, contact)
}

func (s *MemoryStore) GetDocument(ctx context.Context, contact, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetDocument(ctx, contact, id)
}

func (s *MemoryStore) UpdateDocument(ctx context.Context, d Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpdateDocument(ctx, d)
}

func (s *MemoryStore) DeleteDocument(ctx context.Context, contact, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeleteDocument(ctx, contact, id)
}

func (s *MemoryStore) CreateBankDetails(ctx context.Context, b BankDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateBankDetails(ctx, b)
}

func (s *MemoryStore) GetBankDetails(ctx context.Context, contact string) (BankDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.GetBankDetails(ctx, contact)
}

func (s *MemoryStore) UpdateBankDetails(ctx context.Context, b BankDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UpdateBankDetails(ctx, b)
}

func (s *MemoryStore) DeleteBankDetails(ctx context.Context, contact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeleteBankDetails(ctx, contact)
}

// memState holds the actual maps. Its methods implement Store without
// locking; MemoryStore wraps them, and RunInTx hands fn a working copy.
type memState struct {
	profiles       map[string]Profile
	certifications map[string]Certification
	documents      map[string][]Document
	bank           map[string]BankDetails
}

func newMemState() memState {
	return memState{
		profiles:       make(map[string]Profile),
		certifications: make(map[string]Certification),
		documents:      make(map[string][]Document),
		bank:           make(map[string]BankDetails),
	}
}

func (m *memState) clone() memState {
	next := newMemState()
	for k, v := range m.profiles {
		next.profiles[k] = v
	}
	for k, v := range m.certifications {
		next.certifications[k] = v
	}
	for k, v := range m.documents {
		next.documents[k] = append([]Document{}, v...)
	}
	for k, v := range m.bank {
		next.bank[k] = v
	}
	return next
}

func (m *memState) CreateProfile(_ context.Context, p Profile) error {
	if _, exists := m.profiles[p.ContactNumber]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return sentinel.ErrConflict
		}
	}
	m.profiles[p.ContactNumber] = p
	return nil
}

func (m *memState) GetProfile(_ context.Context, contact string) (Profile, error) {
	p, ok := m.profiles[contact]
	if !ok {
		return Profile{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (m *memState) ListProfiles(_ context.Context) ([]Profile, error) {
	out := make([]Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContactNumber < out[j].ContactNumber })
	return out, nil
}

func (m *memState) UpdateProfile(_ context.Context, p Profile) error {
	if _, ok := m.profiles[p.ContactNumber]; !ok {
		return sentinel.ErrNotFound
	}
	for contact, existing := range m.profiles {
		if contact != p.ContactNumber && existing.Email == p.Email {
			return sentinel.ErrConflict
		}
	}
	m.profiles[p.ContactNumber] = p
	return nil
}

func (m *memState) DeleteProfile(_ context.Context, contact string) error {
	if _, ok := m.profiles[contact]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.profiles, contact)
	delete(m.certifications, contact)
	delete(m.documents, contact)
	delete(m.bank, contact)
	return nil
}

func (m *memState) CreateCertification(_ context.Context, c Certification) error {
	if _, ok := m.profiles[c.DoctorContact]; !ok {
		return sentinel.ErrNotFound
	}
	if _, exists := m.certifications[c.DoctorContact]; exists {
		return sentinel.ErrConflict
	}
	m.certifications[c.DoctorContact] = c
	return nil
}

func (m *memState) GetCertification(_ context.Context, contact string) (Certification, error) {
	c, ok := m.certifications[contact]
	if !ok {
		return Certification{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (m *memState) UpdateCertification(_ context.Context, c Certification) error {
	if _, ok := m.certifications[c.DoctorContact]; !ok {
		return sentinel.ErrNotFound
	}
	m.certifications[c.DoctorContact] = c
	return nil
}

func (m *memState) DeleteCertification(_ context.Context, contact string) error {
	if _, ok := m.certifications[contact]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.certifications, contact)
	return nil
}

func (m *memState) CreateDocument(_ context.Context, d Document) error {
	if _, ok := m.profiles[d.DoctorContact]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range m.documents[d.DoctorContact] {
		if existing.ID == d.ID {
			return sentinel.ErrConflict
		}
	}
	m.documents[d.DoctorContact] = append(m.documents[d.DoctorContact], d)
	return nil
}

func (m *memState) ListDocuments(_ context.Context, contact string) ([]Document, error) {
	return append([]Document{}, m.documents[contact]...), nil
}

func (m *memState) GetDocument(_ context.Context, contact, id string) (Document, error) {
	for _, d := range m.documents[contact] {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, sentinel.ErrNotFound
}

func (m *memState) UpdateDocument(_ context.Context, d Document) error {
	docs := m.documents[d.DoctorContact]
	for i := range docs {
		if docs[i].ID == d.ID {
			docs[i] = d
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (m *memState) DeleteDocument(_ context.Context, contact, id string) error {
	docs := m.documents[contact]
	for i := range docs {
		if docs[i].ID == id {
			m.documents[contact] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (m *memState) CreateBankDetails(_ context.Context, b BankDetails) error {
	if _, ok := m.profiles[b.DoctorContact]; !ok {
		return sentinel.ErrNotFound
	}
	if _, exists := m.bank[b.DoctorContact]; exists {
		return sentinel.ErrConflict
	}
	m.bank[b.DoctorContact] = b
	return nil
}

func (m *memState) GetBankDetails(_ context.Context, contact string) (BankDetails, error) {
	b, ok := m.bank[contact]
	if !ok {
		return BankDetails{}, sentinel.ErrNotFound
	}
	return b, nil
}

func (m *memState) UpdateBankDetails(_ context.Context, b BankDetails) error {
	if _, ok := m.bank[b.DoctorContact]; !ok {
		return sentinel.ErrNotFound
	}
	m.bank[b.DoctorContact] = b
	return nil
}

func (m *memState) DeleteBankDetails(_ context.Context, contact string) error {
	if _, ok := m.bank[contact]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.bank, contact)
	return nil
}
