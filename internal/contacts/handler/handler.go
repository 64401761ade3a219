package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medregistry/internal/contacts"
	"medregistry/internal/platform/metrics"
	"medregistry/internal/platform/middleware"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/httputil"
)

// Service defines the operations behind the contact endpoints.
type Service interface {
	Create(ctx context.Context, c contacts.Contact) (contacts.Contact, error)
	Get(ctx context.Context, phone string) (contacts.Contact, error)
	List(ctx context.Context) ([]contacts.Contact, error)
	Update(ctx context.Context, c contacts.Contact) (contacts.Contact, error)
	Delete(ctx context.Context, phone string) error
}

// Handler serves the address-book CRUD under /contacts.
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

// Register attaches the contact routes; the caller mounts them at /contacts.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{phone}", h.handleGet)
		r.Put("/{phone}", h.handleUpdate)
		r.Delete("/{phone}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var c contacts.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.service.Create(r.Context(), c)
	if err != nil {
		h.writeServiceError(w, r, "create contact", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, "Contact created successfully.", created)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "list contacts", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Contacts retrieved successfully.", list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		h.writeServiceError(w, r, "get contact", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Contact retrieved successfully.", c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var c contacts.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	c.Phone = chi.URLParam(r, "phone")

	updated, err := h.service.Update(r.Context(), c)
	if err != nil {
		h.writeServiceError(w, r, "update contact", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Contact updated successfully.", updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "phone")); err != nil {
		h.writeServiceError(w, r, "delete contact", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Contact deleted successfully.", nil)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "contact operation failed",
			"request_id", middleware.GetRequestID(ctx),
			"operation", op,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "contact operation rejected",
			"request_id", middleware.GetRequestID(ctx),
			"operation", op,
			"code", string(dErrors.CodeOf(err)),
		)
	}
	httputil.WriteError(w, err)
}
