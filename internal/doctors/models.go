package doctors

// Attachment is a file stored inline: encoded content plus the metadata
// needed to serve it back. Absence is represented by a nil pointer.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// Upload is a raw incoming file, decoded from multipart exactly once at the
// HTTP boundary. Validators turn Uploads into Attachments via the blob codec.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AllowedAttachmentType reports whether a declared content type is acceptable
// for certification and document uploads.
func AllowedAttachmentType(contentType string) bool {
	switch contentType {
	case "application/pdf", "image/jpeg", "image/png":
		return true
	}
	return false
}

// Profile is the root entity. ContactNumber is the natural key every related
// record hangs off.
type Profile struct {
	ContactNumber  string      `json:"contact_number"`
	FullName       string      `json:"full_name"`
	Specialization string      `json:"specialization"`
	Experience     int         `json:"experience"`
	Hospital       string      `json:"hospital"`
	Gender         string      `json:"gender"`
	Email          string      `json:"email"`
	Address        string      `json:"address"`
	ProfilePhoto   *Attachment `json:"profile_photo,omitempty"`
}

// Certification is one-per-doctor.
type Certification struct {
	DoctorContact         string      `json:"doctor"`
	HighestDegree         string      `json:"highest_degree"`
	YearOfGraduation      string      `json:"year_of_graduation"`
	YearOfExperience      string      `json:"year_of_experience"`
	YogaCertified         string      `json:"yoga_certified"`
	CertificationType     string      `json:"certification_type"`
	IssuingAuthority      string      `json:"issuing_authority"`
	Specialization        string      `json:"specialization"`
	LicenseNumber         string      `json:"license_number"`
	GraduationCertificate *Attachment `json:"graduation_certificate,omitempty"`
	ExperienceLetter      *Attachment `json:"experience_letter,omitempty"`
	ResumeCV              *Attachment `json:"resume_cv,omitempty"`
	License               *Attachment `json:"license,omitempty"`
}

// CertificationFileKinds enumerates the four certification attachment slots
// in download-route order.
var CertificationFileKinds = []string{
	"graduation-certificate",
	"experience-letter",
	"resume-cv",
	"license",
}

// File returns the attachment for a download kind, or nil for unknown kinds.
func (c Certification) File(kind string) *Attachment {
	switch kind {
	case "graduation-certificate":
		return c.GraduationCertificate
	case "experience-letter":
		return c.ExperienceLetter
	case "resume-cv":
		return c.ResumeCV
	case "license":
		return c.License
	}
	return nil
}

// Document is a to-many relation, keyed by (doctor contact, surrogate id).
type Document struct {
	ID            string `json:"id"`
	DoctorContact string `json:"doctor"`
	DocType       string `json:"doc_type"`
	Side          string `json:"side,omitempty"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	Content       string `json:"-"`
	// ContentLength is the decoded size in bytes, captured before encoding.
	ContentLength int `json:"content_length"`
}

// BankDetails is one-per-doctor. The confirmation account number is checked
// at input time and never stored.
type BankDetails struct {
	DoctorContact     string      `json:"doctor"`
	AccountHolderName string      `json:"account_holder_name"`
	AccountNumber     string      `json:"account_number"`
	IFSCCode          string      `json:"ifsc_code"`
	UPIID             string      `json:"upi_id,omitempty"`
	AccountType       string      `json:"account_type"`
	QRCode            *Attachment `json:"bank_qr_code,omitempty"`
}

// FullProfile bundles everything committed for one doctor.
type FullProfile struct {
	Profile       Profile        `json:"profile"`
	Certification *Certification `json:"certification,omitempty"`
	Documents     []Document     `json:"documents"`
	BankDetails   *BankDetails   `json:"bank_details,omitempty"`
}
