package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medregistry/internal/doctors"
	"medregistry/internal/platform/metrics"
	"medregistry/internal/platform/middleware"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/httputil"
)

// Service defines the operations the doctor resource endpoints need.
type Service interface {
	GetProfile(ctx context.Context, contact string) (doctors.Profile, error)
	ListProfiles(ctx context.Context) ([]doctors.Profile, error)
	UpdateProfile(ctx context.Context, p doctors.Profile) error
	DeleteProfile(ctx context.Context, contact string) error
	ProfilePhoto(ctx context.Context, contact string) (doctors.FileContent, error)
	GetFullProfile(ctx context.Context, contact string) (doctors.FullProfile, error)

	GetCertification(ctx context.Context, contact string) (doctors.Certification, error)
	UpdateCertification(ctx context.Context, c doctors.Certification) error
	DeleteCertification(ctx context.Context, contact string) error
	CertificationFile(ctx context.Context, contact, kind string) (doctors.FileContent, error)

	ListDocuments(ctx context.Context, contact string) ([]doctors.Document, error)
	GetDocument(ctx context.Context, contact, id string) (doctors.Document, error)
	DocumentContent(ctx context.Context, contact, id string) (doctors.FileContent, error)
	UpdateDocument(ctx context.Context, d doctors.Document) error
	DeleteDocument(ctx context.Context, contact, id string) error

	GetBankDetails(ctx context.Context, contact string) (doctors.BankDetails, error)
	BankQRCode(ctx context.Context, contact string) (doctors.FileContent, error)
	UpdateBankDetails(ctx context.Context, b doctors.BankDetails) error
	DeleteBankDetails(ctx context.Context, contact string) error
}

// Handler serves the committed-record endpoints under /doctors.
type Handler struct {
	logger       *slog.Logger
	service      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register attaches the doctor resource routes. The caller mounts these
// under /doctors, where the registration wizard shares the prefix; the
// static /register segment wins over the {contact} parameter, so the two
// route sets coexist. Everything here requires a valid access token.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Get("/", h.handleListProfiles)
		r.Route("/{contact}", func(r chi.Router) {
			r.Get("/", h.handleGetProfile)
			r.Put("/", h.handleUpdateProfile)
			r.Delete("/", h.handleDeleteProfile)
			r.Get("/full", h.handleGetFullProfile)
			r.Get("/photo", h.handleProfilePhoto)

			r.Get("/certification", h.handleGetCertification)
			r.Put("/certification", h.handleUpdateCertification)
			r.Delete("/certification", h.handleDeleteCertification)
			r.Get("/certification/files/{kind}", h.handleCertificationFile)

			r.Get("/documents", h.handleListDocuments)
			r.Get("/documents/{id}", h.handleGetDocument)
			r.Get("/documents/{id}/file", h.handleDocumentContent)
			r.Put("/documents/{id}", h.handleUpdateDocument)
			r.Delete("/documents/{id}", h.handleDeleteDocument)

			r.Get("/bank-details", h.handleGetBankDetails)
			r.Get("/bank-details/qr-code", h.handleBankQRCode)
			r.Put("/bank-details", h.handleUpdateBankDetails)
			r.Delete("/bank-details", h.handleDeleteBankDetails)
		})
	})
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "list doctor profiles", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Doctors retrieved successfully.", profiles)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		h.writeServiceError(w, r, "get doctor profile", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Doctor retrieved successfully.", profile)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile doctors.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	profile.ContactNumber = chi.URLParam(r, "contact")

	if err := h.service.UpdateProfile(r.Context(), profile); err != nil {
		h.writeServiceError(w, r, "update doctor profile", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Doctor updated successfully.", profile)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProfile(r.Context(), chi.URLParam(r, "contact")); err != nil {
		h.writeServiceError(w, r, "delete doctor profile", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Doctor deleted successfully.", nil)
}

func (h *Handler) handleGetFullProfile(w http.ResponseWriter, r *http.Request) {
	full, err := h.service.GetFullProfile(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		h.writeServiceError(w, r, "get full doctor profile", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Doctor details retrieved successfully.", full)
}

func (h *Handler) handleProfilePhoto(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.ProfilePhoto(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		h.writeServiceError(w, r, "get profile photo", err)
		return
	}
	httputil.WriteFile(w, file.ContentType, file.Data)
}

func (h *Handler) handleGetCertification(w http.ResponseWriter, r *http.Request) {
	cert, err := h.service.GetCertification(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		h.writeServiceError(w, r, "get certification", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Certification retrieved successfully.", cert)
}

func (h *Handler) handleUpdateCertification(w http.ResponseWriter, r *http.Request) {
	var cert doctors.Certification
	if err := json.NewDecoder(r.Body).Decode(&cert); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	cert.DoctorContact = chi.URLParam(r, "contact")

	if err := h.service.UpdateCertification(r.Context(), cert); err != nil {
		h.writeServiceError(w, r, "update certification", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Certification updated successfully.", cert)
}

func (h *Handler) handleDeleteCertification(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCertification(r.Context(), chi.URLParam(r, "contact")); err != nil {
		h.writeServiceError(w, r, "delete certification", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Certification deleted successfully.", nil)
}

func (h *Handler) handleCertificationFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.CertificationFile(r.Context(), chi.URLParam(r, "contact"), chi.URLParam(r, "kind"))
	if err != nil {
		h.writeServiceError(w, r, "get certification file", err)
		return
	}
	httputil.WriteFile(w, file.ContentType, file.Data)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListDocuments(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		h.writeServiceError(w, r, "list documents", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Documents retrieved successfully.", docs)
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetDocument(r.Context(), chi.URLParam(r, "contact"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "get document", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Document retrieved successfully.", doc)
}

func (h *Handler) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.DocumentContent(r.Context(), chi.URLParam(r, "contact"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "get document content", err)
		return
	}
	httputil.WriteFile(w, file.ContentType, file.Data)
}

// handleUpdateDocument updates document metadata. The stored payload is kept
// as-is; only the descriptive fields change.
func (h *Handler) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	contact := chi.URLParam(r, "contact")
	id := chi.URLParam(r, "id")

	var in doctors.Document
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	doc, err := h.service.GetDocument(r.Context(), contact, id)
	if err != nil {
		h.writeServiceError(w, r, "update document", err)
		return
	}
	doc.DocType = in.DocType
	doc.Side = in.Side
	if in.Filename != "" {
		doc.Filename = in.Filename
	}

	if err := h.service.UpdateDocument(r.Context(), doc); err != nil {
		h.writeServiceError(w, r, "update document", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Document updated successfully.", doc)
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDocument(r.Context(), chi.URLParam(r, "contact"), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, "delete document", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Document deleted successfully.", nil)
}

func (h *Handler) handleGetBankDetails(w http.ResponseWriter, r *http.Request) {
	bank, err := h.service.GetBankDetails(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		h.writeServiceError(w, r, "get bank details", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Bank details retrieved successfully.", bank)
}

func (h *Handler) handleBankQRCode(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.BankQRCode(r.Context(), chi.URLParam(r, "contact"))
	if err != nil {
		h.writeServiceError(w, r, "get bank QR code", err)
		return
	}
	httputil.WriteFile(w, file.ContentType, file.Data)
}

func (h *Handler) handleUpdateBankDetails(w http.ResponseWriter, r *http.Request) {
	var bank doctors.BankDetails
	if err := json.NewDecoder(r.Body).Decode(&bank); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	bank.DoctorContact = chi.URLParam(r, "contact")

	if err := h.service.UpdateBankDetails(r.Context(), bank); err != nil {
		h.writeServiceError(w, r, "update bank details", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Bank details updated successfully.", bank)
}

func (h *Handler) handleDeleteBankDetails(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBankDetails(r.Context(), chi.URLParam(r, "contact")); err != nil {
		h.writeServiceError(w, r, "delete bank details", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Bank details deleted successfully.", nil)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "doctor endpoint failed",
			"request_id", middleware.GetRequestID(ctx),
			"op", op,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "doctor endpoint rejected",
			"request_id", middleware.GetRequestID(ctx),
			"op", op,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
