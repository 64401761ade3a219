package doctors

import "context"

// Store persists committed registration records. Implementations return
// sentinel.ErrNotFound for unknown keys and sentinel.ErrConflict for
// uniqueness violations (contact number, email, one-per-doctor records).
type Store interface {
	CreateProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, contact string) (Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	UpdateProfile(ctx context.Context, profile Profile) error
	DeleteProfile(ctx context.Context, contact string) error

	CreateCertification(ctx context.Context, cert Certification) error
	GetCertification(ctx context.Context, contact string) (Certification, error)
	UpdateCertification(ctx context.Context, cert Certification) error
	DeleteCertification(ctx context.Context, contact string) error

	CreateDocument(ctx context.Context, doc Document) error
	ListDocuments(ctx context.Context, contact string) ([]Document, error)
	GetDocument(ctx context.Context, contact, id string) (Document, error)
	UpdateDocument(ctx context.Context, doc Document) error
	DeleteDocument(ctx context.Context, contact, id string) error

	CreateBankDetails(ctx context.Context, bank BankDetails) error
	GetBankDetails(ctx context.Context, contact string) (BankDetails, error)
	UpdateBankDetails(ctx context.Context, bank BankDetails) error
	DeleteBankDetails(ctx context.Context, contact string) error
}

// TxRunner provides the transactional boundary for the final wizard commit.
// The four record creations either all land or none do. Implementations pass
// a context that carries the open transaction down to the store.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
