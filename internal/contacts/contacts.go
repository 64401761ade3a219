// Package contacts stores the simple address-book records kept alongside
// doctor registrations. Phone numbers are the natural key.
package contacts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/sentinel"
)

// Contact is one address-book entry.
type Contact struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists contacts. Implementations surface sentinel.ErrNotFound and
// sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, c Contact) error
	Get(ctx context.Context, phone string) (Contact, error)
	List(ctx context.Context) ([]Contact, error)
	Update(ctx context.Context, c Contact) error
	Delete(ctx context.Context, phone string) error
}

// Service wraps a Store with validation and error translation.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

func validate(c Contact) error {
	fields := make(map[string]string)
	if c.Phone == "" {
		fields["phone"] = "This field is required."
	}
	if c.Name == "" {
		fields["name"] = "This field is required."
	}
	if len(fields) > 0 {
		return dErrors.WithFields(dErrors.CodeValidation, "Invalid data provided.", fields)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "contact not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "A contact with this phone number already exists.")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "contact storage failure")
	}
}

func (s *Service) Create(ctx context.Context, c Contact) (Contact, error) {
	if err := validate(c); err != nil {
		return Contact{}, err
	}
	c.CreatedAt = s.now().UTC()
	if err := s.store.Create(ctx, c); err != nil {
		return Contact{}, translate(err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, phone string) (Contact, error) {
	c, err := s.store.Get(ctx, phone)
	if err != nil {
		return Contact{}, translate(err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]Contact, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, c Contact) (Contact, error) {
	if err := validate(c); err != nil {
		return Contact{}, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		return Contact{}, translate(err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, phone string) error {
	if err := s.store.Delete(ctx, phone); err != nil {
		return translate(err)
	}
	return nil
}
