package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"medregistry/internal/audit"
	"medregistry/internal/doctors"
	"medregistry/internal/platform/metrics"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/sentinel"
)

// Step completion messages returned in the response envelope.
const (
	MsgStep1Complete = "Step 1 of 4 complete: Personal details received. Proceed to certification details."
	MsgStep2Complete = "Step 2 of 4 complete: Certification details received. Proceed to document submission."
	MsgStep3Complete = "Step 3 of 4: Document added. Add more or proceed to bank details."
	MsgStep4Complete = "Step 4 of 4: Doctor registration complete! All details saved."

	msgStepOneFirst   = "Step 1 (personal details) must be completed first."
	msgStepsFirst     = "Previous steps must be completed first."
	msgSessionExpired = "The registration process has expired. Please start over."
)

// Config bounds the wizard.
type Config struct {
	SessionTTL   time.Duration
	MaxDocuments int
}

// Service drives the four-step registration sequence. Partial state lives
// only in the session store; the final step commits all four records in one
// transaction and then destroys the session.
type Service struct {
	sessions SessionStore
	records  doctors.TxRunner
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Publisher
	tracer   trace.Tracer
	limits   Limits
	cfg      Config

	// now is swappable so expiry tests need not sleep.
	now func() time.Time
}

func NewService(
	sessions SessionStore,
	records doctors.TxRunner,
	logger *slog.Logger,
	m *metrics.Metrics,
	auditPub *audit.Publisher,
	limits Limits,
	cfg Config,
) *Service {
	return &Service{
		sessions: sessions,
		records:  records,
		logger:   logger,
		metrics:  m,
		audit:    auditPub,
		tracer:   otel.Tracer("medregistry/registration"),
		limits:   limits,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SubmitPersonalDetails is step 1. It creates a fresh session, silently
// replacing any incomplete or expired one under the same key, and never
// touches permanent storage.
func (s *Service) SubmitPersonalDetails(ctx context.Context, key string, in PersonalDetailsInput, device string) (doctors.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registration.step1")
	defer span.End()

	profile, err := ValidatePersonalDetails(in, s.limits)
	if err != nil {
		s.metrics.IncStepFailure("step1")
		return doctors.Profile{}, err
	}

	session := WizardSession{
		Key:             key,
		PersonalDetails: &profile,
		StartedAt:       s.now(),
		Device:          device,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "failed to store wizard session", "error", err.Error())
		return doctors.Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration progress")
	}

	s.metrics.IncStarted()
	s.audit.Emit(ctx, audit.Event{
		Action:        audit.ActionRegistrationStarted,
		ContactNumber: profile.ContactNumber,
		SessionKey:    key,
		Device:        device,
	})
	s.logger.InfoContext(ctx, "registration started", "contact_number", profile.ContactNumber)
	return profile, nil
}

// SubmitCertification is step 2. It requires step 1 in place and replaces
// any certification submitted earlier in the same session.
func (s *Service) SubmitCertification(ctx context.Context, key string, in CertificationInput) error {
	ctx, span := s.tracer.Start(ctx, "registration.step2")
	defer span.End()

	// Session and expiry checks come first: a caller who skipped step 1 gets
	// the precondition outcome even when the payload is also invalid.
	return s.mutateSession(ctx, key, "step2", msgStepOneFirst, func(session *WizardSession) error {
		if !session.HasPersonal() {
			return sentinel.ErrInvalidState
		}
		cert, err := ValidateCertification(in, s.limits)
		if err != nil {
			return err
		}
		session.Certification = &cert
		return nil
	})
}

// SubmitDocument is step 3 and may be called repeatedly; each call appends
// one document, up to the configured cap.
func (s *Service) SubmitDocument(ctx context.Context, key string, in DocumentInput) (int, error) {
	ctx, span := s.tracer.Start(ctx, "registration.step3")
	defer span.End()

	count := 0
	err := s.mutateSession(ctx, key, "step3", msgStepsFirst, func(session *WizardSession) error {
		if !session.HasPersonal() || !session.HasCertification() {
			return sentinel.ErrInvalidState
		}
		staged, err := ValidateDocument(in, s.limits)
		if err != nil {
			return err
		}
		if s.cfg.MaxDocuments > 0 && len(session.Documents) >= s.cfg.MaxDocuments {
			return dErrors.WithFields(dErrors.CodeValidation, "Invalid data provided.", map[string]string{
				"file": "Maximum number of documents reached for this registration.",
			})
		}
		session.Documents = append(session.Documents, staged)
		count = len(session.Documents)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Commit is step 4: validate bank details, then create the profile,
// certification, staged documents, and bank details in one transaction. On
// any storage failure the transaction rolls back and the session survives
// so the caller can retry; on success the session is destroyed.
func (s *Service) Commit(ctx context.Context, key string, in BankDetailsInput) (string, error) {
	session, err := s.sessions.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodePrecondition, msgStepsFirst)
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration progress")
	}

	if session.Expired(s.now(), s.cfg.SessionTTL) {
		return "", s.expireSession(ctx, key)
	}
	if !session.HasPersonal() || !session.HasCertification() {
		return "", dErrors.New(dErrors.CodePrecondition, msgStepsFirst)
	}

	bank, err := ValidateBankDetails(in, s.limits)
	if err != nil {
		s.metrics.IncStepFailure("step4")
		return "", err
	}

	contact := session.PersonalDetails.ContactNumber
	ctx, span := s.tracer.Start(ctx, "registration.commit")
	defer span.End()

	started := s.now()
	err = s.records.RunInTx(ctx, func(ctx context.Context, store doctors.Store) error {
		if err := store.CreateProfile(ctx, *session.PersonalDetails); err != nil {
			return err
		}

		cert := *session.Certification
		cert.DoctorContact = contact
		if err := store.CreateCertification(ctx, cert); err != nil {
			return err
		}

		for _, staged := range session.Documents {
			if err := store.CreateDocument(ctx, staged.toDocument(uuid.NewString(), contact)); err != nil {
				return err
			}
		}

		bank.DoctorContact = contact
		return store.CreateBankDetails(ctx, bank)
	})
	if err != nil {
		s.metrics.IncStepFailure("step4")
		if errors.Is(err, sentinel.ErrConflict) {
			s.logger.WarnContext(ctx, "registration commit hit uniqueness conflict", "contact_number", contact)
			return "", dErrors.New(dErrors.CodeConflict, "A doctor with this contact number or email already exists.")
		}
		s.logger.ErrorContext(ctx, "registration commit failed, session preserved",
			"contact_number", contact,
			"error", err.Error(),
		)
		return "", dErrors.Wrap(err, dErrors.CodeCommitFailed, "An error occurred while saving data. Please try again.")
	}
	s.metrics.ObserveCommit(s.now().Sub(started))

	// The records are durable; a stale session only risks a retried commit
	// failing on the unique constraint, so a delete failure is logged, not
	// surfaced.
	if err := s.sessions.Delete(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete committed wizard session",
			"session_key", key,
			"error", err.Error(),
		)
	}

	s.metrics.IncCompleted()
	s.audit.Emit(ctx, audit.Event{
		Action:        audit.ActionRegistrationCommitted,
		ContactNumber: contact,
		SessionKey:    key,
		Device:        session.Device,
	})
	s.logger.InfoContext(ctx, "registration committed",
		"contact_number", contact,
		"documents", len(session.Documents),
	)
	return contact, nil
}

// mutateSession runs fn under the store's read-modify-write and maps session
// level failures onto the wizard error taxonomy. missingMsg is the
// precondition message for an absent session or an out-of-order step.
func (s *Service) mutateSession(ctx context.Context, key, step, missingMsg string, fn func(*WizardSession) error) error {
	expired := false
	err := s.sessions.Update(ctx, key, func(session *WizardSession) error {
		if session.Expired(s.now(), s.cfg.SessionTTL) {
			expired = true
			return sentinel.ErrExpired
		}
		return fn(session)
	})
	switch {
	case err == nil:
		return nil
	case expired && errors.Is(err, sentinel.ErrExpired):
		return s.expireSession(ctx, key)
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrInvalidState):
		s.metrics.IncStepFailure(step)
		return dErrors.New(dErrors.CodePrecondition, missingMsg)
	case dErrors.Is(err, dErrors.CodeValidation):
		s.metrics.IncStepFailure(step)
		return err
	default:
		s.logger.ErrorContext(ctx, "session update failed", "step", step, "error", err.Error())
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration progress")
	}
}

// expireSession destroys a lapsed session and reports the dedicated expiry
// failure, which callers must keep distinct from a precondition failure.
func (s *Service) expireSession(ctx context.Context, key string) error {
	if err := s.sessions.Delete(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete expired wizard session",
			"session_key", key,
			"error", err.Error(),
		)
	}
	s.metrics.IncExpired()
	s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionRegistrationExpired,
		SessionKey: key,
	})
	return dErrors.New(dErrors.CodeSessionExpired, msgSessionExpired)
}
