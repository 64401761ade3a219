// Package blob converts binary attachment content to and from the
// transport-safe text form stored inline alongside relational fields.
// No raw bytes are ever persisted directly.
package blob

import (
	"encoding/base64"

	dErrors "medregistry/pkg/domain-errors"
)

// Encode returns the text form of raw bytes. Total over all inputs,
// including empty.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode reverses Encode. Malformed input yields a decode-class domain error;
// for content that was validated at write time this indicates corruption.
func Decode(text string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDecode, "malformed encoded content")
	}
	return raw, nil
}
