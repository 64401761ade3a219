package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "medregistry/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error hides detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body Envelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Status != "error" {
			t.Fatalf("expected status error, got %q", body.Status)
		}
		if body.Message != "internal server error" {
			t.Fatalf("expected generic message for internal errors, got %q", body.Message)
		}
	})

	t.Run("validation error carries field map as data", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.WithFields(dErrors.CodeValidation, "Invalid data provided.", map[string]string{
			"email": "invalid email address",
		}))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body struct {
			Status  string            `json:"status"`
			Message string            `json:"message"`
			Data    map[string]string `json:"data"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Message != "Invalid data provided." {
			t.Fatalf("unexpected message %q", body.Message)
		}
		if body.Data["email"] != "invalid email address" {
			t.Fatalf("expected field error for email, got %v", body.Data)
		}
	})

	t.Run("unclassified error maps to 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeConflict, "doctor already registered"))

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
	})
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, http.StatusCreated, "created", map[string]string{"contact_number": "9999999999"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var body Envelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" || body.Message != "created" {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestWriteFile(t *testing.T) {
	w := httptest.NewRecorder()
	WriteFile(w, "image/png", []byte{0x89, 0x50})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if w.Body.Len() != 2 {
		t.Fatalf("expected raw bytes, got %d bytes", w.Body.Len())
	}
}
