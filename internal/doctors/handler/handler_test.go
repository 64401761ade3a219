package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"medregistry/internal/doctors"
	"medregistry/internal/platform/middleware"
	"medregistry/pkg/blob"
)

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	return &middleware.JWTClaims{UserID: "user-1", PhoneNumber: "9876543210", UserType: "doctor"}, nil
}

func setupHandler(t *testing.T) (*chi.Mux, *doctors.MemoryStore) {
	t.Helper()
	store := doctors.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := doctors.NewService(store, logger)

	h := New(svc, logger, nil, staticValidator{})
	r := chi.NewRouter()
	r.Route("/doctors", func(r chi.Router) {
		h.Register(r)
	})
	return r, store
}

func seedProfile(t *testing.T, store *doctors.MemoryStore, contact string) {
	t.Helper()
	err := store.CreateProfile(context.Background(), doctors.Profile{
		ContactNumber:  contact,
		FullName:       "Asha Verma",
		Specialization: "Cardiology",
		Experience:     7,
		Hospital:       "City Care",
		Gender:         "female",
		Email:          contact + "@example.com",
		Address:        "12 Lake Road",
	})
	require.NoError(t, err)
}

func doRequest(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RequiresAuth(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")

	req := httptest.NewRequest(http.MethodGet, "/doctors/9876543210", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_GetProfile(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")

	rec := doRequest(r, http.MethodGet, "/doctors/9876543210", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Status string          `json:"status"`
		Data   doctors.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "success", envelope.Status)
	require.Equal(t, "Asha Verma", envelope.Data.FullName)
}

func TestHandler_GetProfile_NotFound(t *testing.T) {
	r, _ := setupHandler(t)

	rec := doRequest(r, http.MethodGet, "/doctors/0000000000", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var envelope struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "error", envelope.Status)
}

func TestHandler_UpdateProfile(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")

	body, err := json.Marshal(doctors.Profile{
		FullName:       "Asha Verma",
		Specialization: "Neurology",
		Experience:     9,
		Hospital:       "City Care",
		Gender:         "female",
		Email:          "asha.updated@example.com",
		Address:        "12 Lake Road",
	})
	require.NoError(t, err)

	rec := doRequest(r, http.MethodPut, "/doctors/9876543210", body)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.GetProfile(context.Background(), "9876543210")
	require.NoError(t, err)
	require.Equal(t, "Neurology", got.Specialization)
	require.Equal(t, 9, got.Experience)
}

func TestHandler_UpdateProfile_BadBody(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")

	rec := doRequest(r, http.MethodPut, "/doctors/9876543210", []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteProfile(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")

	rec := doRequest(r, http.MethodDelete, "/doctors/9876543210", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(r, http.MethodGet, "/doctors/9876543210", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_DocumentContent(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")

	payload := []byte("%PDF-1.4 aadhaar")
	err := store.CreateDocument(context.Background(), doctors.Document{
		ID:            "doc-a",
		DoctorContact: "9876543210",
		DocType:       "aadhaar-card",
		Side:          "front",
		Filename:      "aadhaar.pdf",
		ContentType:   "application/pdf",
		Content:       blob.Encode(payload),
		ContentLength: len(payload),
	})
	require.NoError(t, err)

	rec := doRequest(r, http.MethodGet, "/doctors/9876543210/documents/doc-a/file", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, payload, rec.Body.Bytes())
}

func TestHandler_FullProfile(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")
	require.NoError(t, store.CreateCertification(context.Background(), doctors.Certification{
		DoctorContact: "9876543210",
		HighestDegree: "MBBS",
	}))

	rec := doRequest(r, http.MethodGet, "/doctors/9876543210/full", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Status string              `json:"status"`
		Data   doctors.FullProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "success", envelope.Status)
	require.NotNil(t, envelope.Data.Certification)
	require.Equal(t, "MBBS", envelope.Data.Certification.HighestDegree)
}

func TestHandler_CertificationFileUnknownKind(t *testing.T) {
	r, store := setupHandler(t)
	seedProfile(t, store, "9876543210")
	require.NoError(t, store.CreateCertification(context.Background(), doctors.Certification{
		DoctorContact: "9876543210",
	}))

	rec := doRequest(r, http.MethodGet, "/doctors/9876543210/certification/files/passport", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
