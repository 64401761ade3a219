package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadBodyIsRepeatable(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Code = http.StatusOK
	rr.Body.WriteString(`{"status":"success","message":"ok","data":{"count":2}}`)

	// Envelope and data assertions commonly run against the same recorder;
	// neither read may consume the body.
	AssertSuccess(t, rr, http.StatusOK, "ok")
	data := UnmarshalData[map[string]int](t, rr)
	assert.Equal(t, 2, (*data)["count"])

	env := UnmarshalEnvelope(t, rr)
	assert.Equal(t, "success", env.Status)
}

func TestMultipartRequestRoundTrip(t *testing.T) {
	req := NewMultipartRequest(t, http.MethodPost, "/upload",
		map[string]string{"name": "asha"},
		FormFile{Field: "file", Filename: "a.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
	)

	assert.NoError(t, req.ParseMultipartForm(1<<20))
	assert.Equal(t, "asha", req.FormValue("name"))
	file, header, err := req.FormFile("file")
	assert.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "a.pdf", header.Filename)
	assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
}
