// Package httpapi assembles the public HTTP surface. It owns only route
// composition; each feature package registers its own routes and middleware.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FeatureHandler is implemented by each feature package's HTTP handler.
type FeatureHandler interface {
	Register(r chi.Router)
}

// Handlers collects the feature handlers main has wired up.
type Handlers struct {
	// Registration and Doctors share the /doctors prefix: the wizard lives
	// at /doctors/register/... and the committed records at /doctors/{contact}.
	Registration FeatureHandler
	Doctors      FeatureHandler
	Auth         FeatureHandler
	Contacts     FeatureHandler
}

// NewRouter composes the full route tree.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/doctors", func(r chi.Router) {
		// The static /register segment wins over the {contact} param, so
		// both handlers can share the subtree.
		h.Registration.Register(r)
		h.Doctors.Register(r)
	})
	r.Route("/auth", func(r chi.Router) {
		h.Auth.Register(r)
	})
	r.Route("/contacts", func(r chi.Router) {
		h.Contacts.Register(r)
	})

	return r
}
