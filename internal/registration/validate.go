package registration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"medregistry/internal/doctors"
	"medregistry/pkg/blob"
	dErrors "medregistry/pkg/domain-errors"
)

var (
	contactNumberRe = regexp.MustCompile(`^[0-9]{10}$`)
	emailRe         = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// FieldErrors accumulates per-field rejections. Validators never abort on
// the first bad field; the client gets the whole map back.
type FieldErrors map[string]string

func (fe FieldErrors) Add(field, message string) {
	if _, taken := fe[field]; !taken {
		fe[field] = message
	}
}

// Err folds the map into a coded error, or nil when every field passed.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return dErrors.WithFields(dErrors.CodeValidation, "Invalid data provided.", fe)
}

// Limits carries the upload bounds the validators enforce.
type Limits struct {
	MaxAttachmentBytes int64
}

// PersonalDetailsInput is the raw step-1 form.
type PersonalDetailsInput struct {
	FullName       string
	ContactNumber  string
	Specialization string
	Experience     string
	Hospital       string
	Gender         string
	Email          string
	Address        string
	ProfilePhoto   *doctors.Upload
}

// CertificationInput is the raw step-2 form. All four attachments are
// optional.
type CertificationInput struct {
	HighestDegree         string
	YearOfGraduation      string
	YearOfExperience      string
	YogaCertified         string
	CertificationType     string
	IssuingAuthority      string
	Specialization        string
	LicenseNumber         string
	GraduationCertificate *doctors.Upload
	ExperienceLetter      *doctors.Upload
	ResumeCV              *doctors.Upload
	License               *doctors.Upload
}

// DocumentInput is the raw step-3 form: one document per call.
type DocumentInput struct {
	DocType string
	Side    string
	File    *doctors.Upload
}

// BankDetailsInput is the raw step-4 form. ConfirmAccountNumber is checked
// against AccountNumber and then discarded.
type BankDetailsInput struct {
	AccountHolderName    string
	AccountNumber        string
	ConfirmAccountNumber string
	IFSCCode             string
	UPIID                string
	AccountType          string
	QRCode               *doctors.Upload
}

func requireField(fe FieldErrors, field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		fe.Add(field, "This field is required.")
	}
	return value
}

// checkUpload validates size and, when an allowlist applies, the declared
// content type. A nil upload passes; optionality is the caller's call.
func checkUpload(fe FieldErrors, field string, u *doctors.Upload, limits Limits, restrictType bool) {
	if u == nil {
		return
	}
	if restrictType && !doctors.AllowedAttachmentType(u.ContentType) {
		fe.Add(field, fmt.Sprintf("Unsupported content type %q. Allowed: application/pdf, image/jpeg, image/png.", u.ContentType))
		return
	}
	if limits.MaxAttachmentBytes > 0 && int64(len(u.Data)) > limits.MaxAttachmentBytes {
		fe.Add(field, fmt.Sprintf("File exceeds the maximum size of %d bytes.", limits.MaxAttachmentBytes))
	}
}

func encodeUpload(u *doctors.Upload) *doctors.Attachment {
	if u == nil {
		return nil
	}
	return &doctors.Attachment{
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Content:     blob.Encode(u.Data),
	}
}

// ValidatePersonalDetails normalizes the step-1 form into a profile record.
func ValidatePersonalDetails(in PersonalDetailsInput, limits Limits) (doctors.Profile, error) {
	fe := FieldErrors{}

	fullName := requireField(fe, "full_name", in.FullName)
	contact := strings.TrimSpace(in.ContactNumber)
	if contact == "" {
		fe.Add("contact_number", "This field is required.")
	} else if !contactNumberRe.MatchString(contact) {
		fe.Add("contact_number", "Contact number must be exactly 10 digits.")
	}
	specialization := requireField(fe, "specialization", in.Specialization)
	hospital := requireField(fe, "hospital", in.Hospital)
	gender := requireField(fe, "gender", in.Gender)
	address := requireField(fe, "address", in.Address)

	email := strings.TrimSpace(in.Email)
	if email == "" {
		fe.Add("email", "This field is required.")
	} else if !emailRe.MatchString(email) {
		fe.Add("email", "Enter a valid email address.")
	}

	experience := 0
	if raw := strings.TrimSpace(in.Experience); raw == "" {
		fe.Add("experience", "This field is required.")
	} else if parsed, err := strconv.Atoi(raw); err != nil || parsed < 0 {
		fe.Add("experience", "Experience must be a non-negative whole number.")
	} else {
		experience = parsed
	}

	checkUpload(fe, "profile_photo", in.ProfilePhoto, limits, false)

	if err := fe.Err(); err != nil {
		return doctors.Profile{}, err
	}

	return doctors.Profile{
		ContactNumber:  contact,
		FullName:       fullName,
		Specialization: specialization,
		Experience:     experience,
		Hospital:       hospital,
		Gender:         gender,
		Email:          email,
		Address:        address,
		ProfilePhoto:   encodeUpload(in.ProfilePhoto),
	}, nil
}

// ValidateCertification normalizes the step-2 form. The doctor contact is
// filled in at commit time, not here.
func ValidateCertification(in CertificationInput, limits Limits) (doctors.Certification, error) {
	fe := FieldErrors{}

	highestDegree := requireField(fe, "highest_degree", in.HighestDegree)
	yearOfGraduation := requireField(fe, "year_of_graduation", in.YearOfGraduation)
	yearOfExperience := requireField(fe, "year_of_experience", in.YearOfExperience)
	yogaCertified := requireField(fe, "yoga_certified", in.YogaCertified)
	certificationType := requireField(fe, "certification_type", in.CertificationType)
	issuingAuthority := requireField(fe, "issuing_authority", in.IssuingAuthority)
	specialization := requireField(fe, "specialization", in.Specialization)
	licenseNumber := requireField(fe, "license_number", in.LicenseNumber)

	checkUpload(fe, "graduation_certificate", in.GraduationCertificate, limits, true)
	checkUpload(fe, "experience_letter", in.ExperienceLetter, limits, true)
	checkUpload(fe, "resume_cv", in.ResumeCV, limits, true)
	checkUpload(fe, "license", in.License, limits, true)

	if err := fe.Err(); err != nil {
		return doctors.Certification{}, err
	}

	return doctors.Certification{
		HighestDegree:         highestDegree,
		YearOfGraduation:      yearOfGraduation,
		YearOfExperience:      yearOfExperience,
		YogaCertified:         yogaCertified,
		CertificationType:     certificationType,
		IssuingAuthority:      issuingAuthority,
		Specialization:        specialization,
		LicenseNumber:         licenseNumber,
		GraduationCertificate: encodeUpload(in.GraduationCertificate),
		ExperienceLetter:      encodeUpload(in.ExperienceLetter),
		ResumeCV:              encodeUpload(in.ResumeCV),
		License:               encodeUpload(in.License),
	}, nil
}

// ValidateDocument normalizes one step-3 upload.
func ValidateDocument(in DocumentInput, limits Limits) (StagedDocument, error) {
	fe := FieldErrors{}

	docType := requireField(fe, "doc_type", in.DocType)
	if in.File == nil {
		fe.Add("file", "This field is required.")
	}
	checkUpload(fe, "file", in.File, limits, true)

	if err := fe.Err(); err != nil {
		return StagedDocument{}, err
	}

	return StagedDocument{
		DocType:       docType,
		Side:          strings.TrimSpace(in.Side),
		Filename:      in.File.Filename,
		ContentType:   in.File.ContentType,
		Content:       blob.Encode(in.File.Data),
		ContentLength: len(in.File.Data),
	}, nil
}

// ValidateBankDetails normalizes the step-4 form. The confirmation account
// number is compared and dropped; it never reaches storage.
func ValidateBankDetails(in BankDetailsInput, limits Limits) (doctors.BankDetails, error) {
	fe := FieldErrors{}

	accountHolder := requireField(fe, "account_holder_name", in.AccountHolderName)
	accountNumber := requireField(fe, "account_number", in.AccountNumber)
	confirm := requireField(fe, "confirm_account_number", in.ConfirmAccountNumber)
	ifsc := requireField(fe, "ifsc_code", in.IFSCCode)
	accountType := requireField(fe, "account_type", in.AccountType)

	if accountNumber != "" && confirm != "" && accountNumber != confirm {
		fe.Add("confirm_account_number", "Account numbers do not match.")
	}

	checkUpload(fe, "bank_qr_code", in.QRCode, limits, false)

	if err := fe.Err(); err != nil {
		return doctors.BankDetails{}, err
	}

	return doctors.BankDetails{
		AccountHolderName: accountHolder,
		AccountNumber:     accountNumber,
		IFSCCode:          ifsc,
		UPIID:             strings.TrimSpace(in.UPIID),
		AccountType:       accountType,
		QRCode:            encodeUpload(in.QRCode),
	}, nil
}
