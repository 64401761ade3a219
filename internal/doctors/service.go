package doctors

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"medregistry/pkg/blob"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/sentinel"
)

// FileContent is a decoded attachment ready to serve over HTTP.
type FileContent struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service is the access layer over committed registration records. It
// translates store sentinels into coded errors and decodes inline
// attachments on the way out.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func translateStoreErr(err error, resource string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, resource+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, resource+" already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+resource)
	}
}

func (s *Service) GetProfile(ctx context.Context, contact string) (Profile, error) {
	p, err := s.store.GetProfile(ctx, contact)
	if err != nil {
		return Profile{}, translateStoreErr(err, "doctor profile")
	}
	return p, nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]Profile, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, translateStoreErr(err, "doctor profiles")
	}
	return profiles, nil
}

func (s *Service) UpdateProfile(ctx context.Context, p Profile) error {
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return translateStoreErr(err, "doctor profile")
	}
	return nil
}

func (s *Service) DeleteProfile(ctx context.Context, contact string) error {
	if err := s.store.DeleteProfile(ctx, contact); err != nil {
		return translateStoreErr(err, "doctor profile")
	}
	s.logger.Info("doctor profile deleted", "contact_number", contact)
	return nil
}

// ProfilePhoto decodes the stored profile photo for download.
func (s *Service) ProfilePhoto(ctx context.Context, contact string) (FileContent, error) {
	p, err := s.GetProfile(ctx, contact)
	if err != nil {
		return FileContent{}, err
	}
	return decodeAttachment(p.ProfilePhoto, "profile photo")
}

func (s *Service) GetCertification(ctx context.Context, contact string) (Certification, error) {
	c, err := s.store.GetCertification(ctx, contact)
	if err != nil {
		return Certification{}, translateStoreErr(err, "certification")
	}
	return c, nil
}

func (s *Service) UpdateCertification(ctx context.Context, c Certification) error {
	if err := s.store.UpdateCertification(ctx, c); err != nil {
		return translateStoreErr(err, "certification")
	}
	return nil
}

func (s *Service) DeleteCertification(ctx context.Context, contact string) error {
	if err := s.store.DeleteCertification(ctx, contact); err != nil {
		return translateStoreErr(err, "certification")
	}
	return nil
}

// CertificationFile decodes one of the four certification attachments,
// selected by its download kind.
func (s *Service) CertificationFile(ctx context.Context, contact, kind string) (FileContent, error) {
	c, err := s.GetCertification(ctx, contact)
	if err != nil {
		return FileContent{}, err
	}
	return decodeAttachment(c.File(kind), "certification file")
}

func (s *Service) ListDocuments(ctx context.Context, contact string) ([]Document, error) {
	docs, err := s.store.ListDocuments(ctx, contact)
	if err != nil {
		return nil, translateStoreErr(err, "documents")
	}
	return docs, nil
}

func (s *Service) GetDocument(ctx context.Context, contact, id string) (Document, error) {
	d, err := s.store.GetDocument(ctx, contact, id)
	if err != nil {
		return Document{}, translateStoreErr(err, "document")
	}
	return d, nil
}

// DocumentContent decodes a stored document payload for download.
func (s *Service) DocumentContent(ctx context.Context, contact, id string) (FileContent, error) {
	d, err := s.GetDocument(ctx, contact, id)
	if err != nil {
		return FileContent{}, err
	}
	data, err := blob.Decode(d.Content)
	if err != nil {
		s.logger.Error("stored document is corrupt", "contact_number", contact, "document_id", id)
		return FileContent{}, err
	}
	return FileContent{Filename: d.Filename, ContentType: d.ContentType, Data: data}, nil
}

func (s *Service) UpdateDocument(ctx context.Context, d Document) error {
	if err := s.store.UpdateDocument(ctx, d); err != nil {
		return translateStoreErr(err, "document")
	}
	return nil
}

func (s *Service) DeleteDocument(ctx context.Context, contact, id string) error {
	if err := s.store.DeleteDocument(ctx, contact, id); err != nil {
		return translateStoreErr(err, "document")
	}
	return nil
}

func (s *Service) GetBankDetails(ctx context.Context, contact string) (BankDetails, error) {
	b, err := s.store.GetBankDetails(ctx, contact)
	if err != nil {
		return BankDetails{}, translateStoreErr(err, "bank details")
	}
	return b, nil
}

// BankQRCode decodes the stored payment QR image for download.
func (s *Service) BankQRCode(ctx context.Context, contact string) (FileContent, error) {
	b, err := s.GetBankDetails(ctx, contact)
	if err != nil {
		return FileContent{}, err
	}
	return decodeAttachment(b.QRCode, "bank QR code")
}

func (s *Service) UpdateBankDetails(ctx context.Context, b BankDetails) error {
	if err := s.store.UpdateBankDetails(ctx, b); err != nil {
		return translateStoreErr(err, "bank details")
	}
	return nil
}

func (s *Service) DeleteBankDetails(ctx context.Context, contact string) error {
	if err := s.store.DeleteBankDetails(ctx, contact); err != nil {
		return translateStoreErr(err, "bank details")
	}
	return nil
}

// GetFullProfile gathers everything committed for one doctor. The profile is
// fetched first so an unknown contact fails fast; the related records are
// fetched concurrently and missing one-per-doctor records are simply omitted.
func (s *Service) GetFullProfile(ctx context.Context, contact string) (FullProfile, error) {
	profile, err := s.GetProfile(ctx, contact)
	if err != nil {
		return FullProfile{}, err
	}

	full := FullProfile{Profile: profile, Documents: []Document{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cert, err := s.store.GetCertification(gctx, contact)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return translateStoreErr(err, "certification")
		}
		full.Certification = &cert
		return nil
	})
	g.Go(func() error {
		docs, err := s.store.ListDocuments(gctx, contact)
		if err != nil {
			return translateStoreErr(err, "documents")
		}
		full.Documents = docs
		return nil
	})
	g.Go(func() error {
		bank, err := s.store.GetBankDetails(gctx, contact)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return translateStoreErr(err, "bank details")
		}
		full.BankDetails = &bank
		return nil
	})
	if err := g.Wait(); err != nil {
		return FullProfile{}, err
	}
	return full, nil
}

func decodeAttachment(a *Attachment, resource string) (FileContent, error) {
	if a == nil {
		return FileContent{}, dErrors.New(dErrors.CodeNotFound, resource+" not found")
	}
	data, err := blob.Decode(a.Content)
	if err != nil {
		return FileContent{}, err
	}
	return FileContent{Filename: a.Filename, ContentType: a.ContentType, Data: data}, nil
}
