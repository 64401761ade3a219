package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// The latency label must be the route pattern so path parameters never leak
// into metric label values.
func TestRoutePattern(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			got = routePattern(req)
		})
	})
	r.Get("/doctors/{contact}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/doctors/9876543210", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "/doctors/{contact}", got)

	req = httptest.NewRequest(http.MethodGet, "/no-such-route", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "unmatched", got)
}

func TestLatencyNilMetrics(t *testing.T) {
	handler := Latency(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
