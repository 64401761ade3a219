package registration

import (
	"time"

	"medregistry/internal/doctors"
)

// StagedDocument is one step-3 upload held in the session until commit. The
// payload is already encoded; ContentLength remembers the raw size.
type StagedDocument struct {
	DocType       string `json:"doc_type"`
	Side          string `json:"side,omitempty"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	Content       string `json:"content"`
	ContentLength int    `json:"content_length"`
}

// WizardSession is the keyed accumulator of partial registration state.
// PersonalDetails and Certification fill in strict order; Documents append
// freely once certification is present. Nothing here touches permanent
// storage until the final commit.
type WizardSession struct {
	Key             string                 `json:"key"`
	PersonalDetails *doctors.Profile       `json:"personal_details,omitempty"`
	Certification   *doctors.Certification `json:"certification,omitempty"`
	Documents       []StagedDocument       `json:"documents,omitempty"`
	StartedAt       time.Time              `json:"started_at"`
	Device          string                 `json:"device,omitempty"`
}

func (s WizardSession) HasPersonal() bool {
	return s.PersonalDetails != nil
}

func (s WizardSession) HasCertification() bool {
	return s.Certification != nil
}

// Expired reports whether the session passed its registration window.
// StartedAt is set once at step 1 and never moves.
func (s WizardSession) Expired(now time.Time, ttl time.Duration) bool {
	return !s.StartedAt.IsZero() && now.Sub(s.StartedAt) > ttl
}

// toDocument converts a staged document into its persisted form under the
// committed contact number.
func (d StagedDocument) toDocument(id, contact string) doctors.Document {
	return doctors.Document{
		ID:            id,
		DoctorContact: contact,
		DocType:       d.DocType,
		Side:          d.Side,
		Filename:      d.Filename,
		ContentType:   d.ContentType,
		Content:       d.Content,
		ContentLength: d.ContentLength,
	}
}
