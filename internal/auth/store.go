package auth

import "context"

// UserStore persists accounts. Implementations surface
// sentinel.ErrNotFound and sentinel.ErrConflict.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByPhone(ctx context.Context, phone string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
}

// OTPStore holds pending challenges keyed by phone number. Entries expire
// after the TTL given at construction; an expired or unknown key reads as
// sentinel.ErrNotFound.
type OTPStore interface {
	Put(ctx context.Context, phone string, ch Challenge) error
	Get(ctx context.Context, phone string) (Challenge, error)
	Delete(ctx context.Context, phone string) error
}
