package middleware

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

type contextKeyDevice struct{}

// ContextKeyDevice is exported for service tests that don't run the full
// HTTP middleware chain.
var ContextKeyDevice = contextKeyDevice{}

// GetDevice retrieves the human-readable device description from the context.
func GetDevice(ctx context.Context) string {
	if d, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return d
	}
	return ""
}

// WithDevice injects a device description into a context.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ContextKeyDevice, device)
}

// Device parses the User-Agent header into a display name ("Chrome on Linux")
// recorded on wizard sessions for support diagnostics.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		ua := useragent.New(raw)
		name, _ := ua.Browser()
		display := name
		if os := ua.OS(); os != "" {
			display = name + " on " + os
		}
		next.ServeHTTP(w, r.WithContext(WithDevice(r.Context(), display)))
	})
}
