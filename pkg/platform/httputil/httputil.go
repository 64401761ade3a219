// Package httputil centralizes the uniform response envelope and domain error
// translation so every handler speaks the same JSON.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "medregistry/pkg/domain-errors"
)

// Envelope is the uniform response body: {status, message, data?}.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteSuccess writes a success envelope with the given status code.
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Envelope{Status: "success", Message: message, Data: data})
}

// WriteError translates a domain error into the error envelope. Validation
// errors carry their field map as data. Unclassified and internal errors get
// a generic message so storage details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal server error"
	var data any

	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal {
		message = de.Message
		if len(de.Fields) > 0 {
			data = de.Fields
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(Envelope{Status: "error", Message: message, Data: data})
}

// WriteFile writes raw decoded bytes with the stored content type. Attachment
// downloads bypass the envelope.
func WriteFile(w http.ResponseWriter, contentType string, content []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
