// Package testutil provides common test utilities for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FormFile describes one file part of a multipart form.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// NewMultipartRequest builds a multipart/form-data request from string fields
// and file parts, the shape the registration wizard consumes.
func NewMultipartRequest(t *testing.T, method, path string, fields map[string]string, files ...FormFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, value := range fields {
		require.NoError(t, writer.WriteField(field, value), "failed to write form field %q", field)
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.Field)+`"; filename="`+escapeQuotes(f.Filename)+`"`)
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		part, err := writer.CreatePart(header)
		require.NoError(t, err, "failed to create form file %q", f.Field)
		_, err = part.Write(f.Content)
		require.NoError(t, err, "failed to write form file %q", f.Field)
	}
	require.NoError(t, writer.Close(), "failed to finalize multipart body")

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}

// NewJSONRequest creates an HTTP request with JSON body.
// The body is marshaled to JSON automatically.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// ReadBody returns the response body without draining the recorder, so
// multiple assertions can inspect the same response.
func ReadBody(t *testing.T, rr *httptest.ResponseRecorder) []byte {
	t.Helper()
	return rr.Body.Bytes()
}

// ResponseEnvelope mirrors the uniform {status, message, data} response body.
type ResponseEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// UnmarshalEnvelope decodes the response body into the uniform envelope.
func UnmarshalEnvelope(t *testing.T, rr *httptest.ResponseRecorder) ResponseEnvelope {
	t.Helper()
	var env ResponseEnvelope
	require.NoError(t, json.Unmarshal(ReadBody(t, rr), &env), "failed to unmarshal response envelope")
	return env
}

// UnmarshalData decodes the envelope's data payload into the target type.
func UnmarshalData[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	env := UnmarshalEnvelope(t, rr)
	var result T
	require.NoError(t, json.Unmarshal(env.Data, &result), "failed to unmarshal envelope data")
	return &result
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code: body=%s", rr.Body.String())
}

// AssertSuccess asserts status code, envelope status, and message.
func AssertSuccess(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env := UnmarshalEnvelope(t, rr)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, expectedMessage, env.Message)
}

// AssertError asserts status code, envelope error status, and message.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env := UnmarshalEnvelope(t, rr)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, expectedMessage, env.Message)
}
