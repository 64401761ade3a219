package registration

import "context"

// SessionStore holds in-flight wizard sessions keyed by an opaque session
// key. Implementations return sentinel.ErrNotFound for unknown keys and make
// Update an atomic read-modify-write, so two concurrent step submissions for
// one session cannot lose writes.
type SessionStore interface {
	Get(ctx context.Context, key string) (WizardSession, error)
	// Put stores the session unconditionally, replacing any prior state.
	Put(ctx context.Context, session WizardSession) error
	// Update applies fn to the current session and persists the result
	// atomically. An error from fn aborts the write and is returned as-is.
	Update(ctx context.Context, key string, fn func(*WizardSession) error) error
	Delete(ctx context.Context, key string) error
}
