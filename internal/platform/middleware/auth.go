package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	UserID      string
	PhoneNumber string
	UserType    string
}

// Context keys for storing authenticated user information.
type contextKeyUserID struct{}
type contextKeyPhoneNumber struct{}
type contextKeyUserType struct{}

var (
	ContextKeyUserID      = contextKeyUserID{}
	ContextKeyPhoneNumber = contextKeyPhoneNumber{}
	ContextKeyUserType    = contextKeyUserType{}
)

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyUserID).(string); ok {
		return id
	}
	return ""
}

// GetPhoneNumber retrieves the authenticated phone number from the context.
func GetPhoneNumber(ctx context.Context) string {
	if phone, ok := ctx.Value(ContextKeyPhoneNumber).(string); ok {
		return phone
	}
	return ""
}

// GetUserType retrieves the authenticated user type from the context.
func GetUserType(ctx context.Context) string {
	if ut, ok := ctx.Value(ContextKeyUserType).(string); ok {
		return ut
	}
	return ""
}

// RequireAuth gates protected routes on a valid bearer token.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				unauthorized(w, r, logger, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				unauthorized(w, r, logger, "Invalid or expired token")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyPhoneNumber, claims.PhoneNumber)
			ctx = context.WithValue(ctx, ContextKeyUserType, claims.UserType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte(`{"status":"error","message":"` + message + `"}`)); err != nil {
		logger.ErrorContext(r.Context(), "failed to write unauthorized response",
			"error", err,
			"request_id", GetRequestID(r.Context()),
		)
	}
}
