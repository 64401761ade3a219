package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medregistry/internal/doctors"
	"medregistry/internal/platform/metrics"
	"medregistry/internal/platform/middleware"
	"medregistry/internal/registration"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/httputil"
)

// sessionCookie ties the four wizard requests to one server-side session.
const sessionCookie = "wizard_session"

// Service defines the wizard operations behind the step endpoints.
type Service interface {
	SubmitPersonalDetails(ctx context.Context, key string, in registration.PersonalDetailsInput, device string) (doctors.Profile, error)
	SubmitCertification(ctx context.Context, key string, in registration.CertificationInput) error
	SubmitDocument(ctx context.Context, key string, in registration.DocumentInput) (int, error)
	Commit(ctx context.Context, key string, in registration.BankDetailsInput) (string, error)
}

// Handler serves the four registration steps. The wizard is open: callers
// have no account yet, so nothing here sits behind RequireAuth.
type Handler struct {
	logger             *slog.Logger
	service            Service
	metrics            *metrics.Metrics
	maxMultipartMemory int64
	cookieTTL          time.Duration
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, maxMultipartMemory int64, cookieTTL time.Duration) *Handler {
	return &Handler{
		logger:             logger,
		service:            service,
		metrics:            m,
		maxMultipartMemory: maxMultipartMemory,
		cookieTTL:          cookieTTL,
	}
}

// Register attaches the wizard routes. The caller mounts these under
// /doctors, giving the POST /doctors/register/... surface.
func (h *Handler) Register(r chi.Router) {
	r.Route("/register", func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.Device)
		r.Use(middleware.Latency(h.metrics))

		r.Post("/step1", h.handleStep1)
		r.Post("/step2", h.handleStep2)
		r.Post("/documents", h.handleDocuments)
		r.Post("/step4", h.handleStep4)
	})
}

func (h *Handler) handleStep1(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}

	photo, ok := h.formUpload(w, r, "profile_photo")
	if !ok {
		return
	}
	in := registration.PersonalDetailsInput{
		FullName:       r.FormValue("full_name"),
		ContactNumber:  r.FormValue("contact_number"),
		Specialization: r.FormValue("specialization"),
		Experience:     r.FormValue("experience"),
		Hospital:       r.FormValue("hospital"),
		Gender:         r.FormValue("gender"),
		Email:          r.FormValue("email"),
		Address:        r.FormValue("address"),
		ProfilePhoto:   photo,
	}

	// Step 1 starts (or restarts) the wizard, so a fresh key is minted when
	// the caller has none yet.
	key := h.sessionKey(r)
	if key == "" {
		key = uuid.NewString()
	}

	profile, err := h.service.SubmitPersonalDetails(r.Context(), key, in, middleware.GetDevice(r.Context()))
	if err != nil {
		h.writeStepError(w, r, "step1", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    key,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteSuccess(w, http.StatusOK, registration.MsgStep1Complete, profile)
}

func (h *Handler) handleStep2(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}

	in := registration.CertificationInput{
		HighestDegree:     r.FormValue("highest_degree"),
		YearOfGraduation:  r.FormValue("year_of_graduation"),
		YearOfExperience:  r.FormValue("year_of_experience"),
		YogaCertified:     r.FormValue("yoga_certified"),
		CertificationType: r.FormValue("certification_type"),
		IssuingAuthority:  r.FormValue("issuing_authority"),
		Specialization:    r.FormValue("specialization"),
		LicenseNumber:     r.FormValue("license_number"),
	}
	var ok bool
	if in.GraduationCertificate, ok = h.formUpload(w, r, "graduation_certificate"); !ok {
		return
	}
	if in.ExperienceLetter, ok = h.formUpload(w, r, "experience_letter"); !ok {
		return
	}
	if in.ResumeCV, ok = h.formUpload(w, r, "resume_cv"); !ok {
		return
	}
	if in.License, ok = h.formUpload(w, r, "license"); !ok {
		return
	}

	if err := h.service.SubmitCertification(r.Context(), h.sessionKey(r), in); err != nil {
		h.writeStepError(w, r, "step2", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, registration.MsgStep2Complete, nil)
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}

	file, ok := h.formUpload(w, r, "file")
	if !ok {
		return
	}
	in := registration.DocumentInput{
		DocType: r.FormValue("doc_type"),
		Side:    r.FormValue("side"),
		File:    file,
	}

	count, err := h.service.SubmitDocument(r.Context(), h.sessionKey(r), in)
	if err != nil {
		h.writeStepError(w, r, "step3", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, registration.MsgStep3Complete, map[string]int{
		"document_count": count,
	})
}

func (h *Handler) handleStep4(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}

	qr, ok := h.formUpload(w, r, "bank_qr_code")
	if !ok {
		return
	}
	in := registration.BankDetailsInput{
		AccountHolderName:    r.FormValue("account_holder_name"),
		AccountNumber:        r.FormValue("account_number"),
		ConfirmAccountNumber: r.FormValue("confirm_account_number"),
		IFSCCode:             r.FormValue("ifsc_code"),
		UPIID:                r.FormValue("upi_id"),
		AccountType:          r.FormValue("account_type"),
		QRCode:               qr,
	}

	key := h.sessionKey(r)
	contact, err := h.service.Commit(r.Context(), key, in)
	if err != nil {
		h.writeStepError(w, r, "step4", err)
		return
	}

	// The wizard is over; drop the cookie so a new registration starts clean.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteSuccess(w, http.StatusCreated, registration.MsgStep4Complete, map[string]string{
		"contact_number": contact,
	})
}

// sessionKey returns the caller's wizard key, or "" when the cookie is
// absent; the service treats an unknown key as a missing session.
func (h *Handler) sessionKey(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(h.maxMultipartMemory); err != nil {
		h.logger.WarnContext(r.Context(), "invalid multipart form",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form data"))
		return false
	}
	return true
}

// formUpload pulls one optional file field. Reports false after writing an
// error response when the field exists but cannot be read.
func (h *Handler) formUpload(w http.ResponseWriter, r *http.Request, field string) (*doctors.Upload, bool) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "could not read uploaded field %q", field))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "could not read uploaded field %q", field))
		return nil, false
	}
	return &doctors.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func (h *Handler) writeStepError(w http.ResponseWriter, r *http.Request, step string, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeCommitFailed {
		h.logger.ErrorContext(ctx, "registration step failed",
			"request_id", middleware.GetRequestID(ctx),
			"step", step,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "registration step rejected",
			"request_id", middleware.GetRequestID(ctx),
			"step", step,
			"code", string(code),
		)
	}
	httputil.WriteError(w, err)
}
