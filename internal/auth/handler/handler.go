package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medregistry/internal/auth"
	"medregistry/internal/platform/metrics"
	"medregistry/internal/platform/middleware"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/httputil"
)

// Service defines the operations behind the auth endpoints.
type Service interface {
	Signup(ctx context.Context, in auth.SignupInput) (string, error)
	VerifySignup(ctx context.Context, phone, code string) (auth.User, auth.TokenPair, error)
	Login(ctx context.Context, phone string) (string, error)
	VerifyLogin(ctx context.Context, phone, code string) (auth.User, auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	Me(ctx context.Context, userID string) (auth.User, error)
}

// Handler serves signup, login, and token endpoints under /auth.
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

// Register attaches the auth routes; the caller mounts them under /auth.
// Only /me sits behind the bearer gate.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.Latency(h.metrics))

		r.Post("/signup", h.handleSignup)
		r.Post("/verify-signup", h.handleVerifySignup)
		r.Post("/login", h.handleLogin)
		r.Post("/verify-login", h.handleVerifyLogin)
		r.Post("/refresh", h.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Get("/me", h.handleMe)
		})
	})
}

type verifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Phone string `json:"phone"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// sessionResponse pairs the user with their tokens after verification.
type sessionResponse struct {
	User   auth.User      `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	code, err := h.service.Signup(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, "signup", err)
		return
	}
	// The code rides in the response body; there is no SMS gateway.
	httputil.WriteSuccess(w, http.StatusOK, "Verification code sent.", map[string]string{"otp": code})
}

func (h *Handler) handleVerifySignup(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, pair, err := h.service.VerifySignup(r.Context(), in.Phone, in.OTP)
	if err != nil {
		h.writeServiceError(w, r, "verify signup", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, "Account created successfully.", sessionResponse{User: user, Tokens: pair})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	code, err := h.service.Login(r.Context(), in.Phone)
	if err != nil {
		h.writeServiceError(w, r, "login", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Verification code sent.", map[string]string{"otp": code})
}

func (h *Handler) handleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, pair, err := h.service.VerifyLogin(r.Context(), in.Phone, in.OTP)
	if err != nil {
		h.writeServiceError(w, r, "verify login", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Logged in successfully.", sessionResponse{User: user, Tokens: pair})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	pair, err := h.service.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		h.writeServiceError(w, r, "refresh", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Token refreshed.", pair)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, "me", err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Account retrieved successfully.", user)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "auth operation failed",
			"request_id", middleware.GetRequestID(ctx),
			"operation", op,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "auth operation rejected",
			"request_id", middleware.GetRequestID(ctx),
			"operation", op,
			"code", string(dErrors.CodeOf(err)),
		)
	}
	httputil.WriteError(w, err)
}
