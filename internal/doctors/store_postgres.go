package doctors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"medregistry/pkg/platform/sentinel"
	txcontext "medregistry/pkg/platform/tx"
)

// PostgresStore persists doctor records in PostgreSQL. All statements go
// through execer so calls made inside PostgresTxRunner.RunInTx share the
// same transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed doctor store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// translatePQ maps driver-level constraint violations onto sentinel errors.
// 23505 is unique_violation, 23503 is foreign_key_violation.
func translatePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return sentinel.ErrConflict
		case "23503":
			return sentinel.ErrNotFound
		}
	}
	return err
}

func attachmentColumns(a *Attachment) (filename, contentType, content sql.NullString) {
	if a == nil {
		return sql.NullString{}, sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: a.Filename, Valid: true},
		sql.NullString{String: a.ContentType, Valid: true},
		sql.NullString{String: a.Content, Valid: true}
}

func scanAttachment(filename, contentType, content sql.NullString) *Attachment {
	if !filename.Valid {
		return nil
	}
	return &Attachment{
		Filename:    filename.String,
		ContentType: contentType.String,
		Content:     content.String,
	}
}

func (s *PostgresStore) CreateProfile(ctx context.Context, p Profile) error {
	photoName, photoType, photoContent := attachmentColumns(p.ProfilePhoto)
	query := `
		INSERT INTO doctor_profiles (
			contact_number, full_name, specialization, experience_years, hospital,
			gender, email, address, photo_filename, photo_content_type, photo_content
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		p.ContactNumber, p.FullName, p.Specialization, p.Experience, p.Hospital,
		p.Gender, p.Email, p.Address, photoName, photoType, photoContent,
	)
	if err != nil {
		if translated := translatePQ(err); translated != err {
			return translated
		}
		return fmt.Errorf("insert doctor profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, contact string) (Profile, error) {
	query := `
		SELECT contact_number, full_name, specialization, experience_years, hospital,
			   gender, email, address, photo_filename, photo_content_type, photo_content
		FROM doctor_profiles
		WHERE contact_number = $1
	`
	return scanProfile(s.execer(ctx).QueryRowContext(ctx, query, contact))
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	query := `
		SELECT contact_number, full_name, specialization, experience_years, hospital,
			   gender, email, address, photo_filename, photo_content_type, photo_content
		FROM doctor_profiles
		ORDER BY contact_number
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query doctor profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctor profiles: %w", err)
	}
	return profiles, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, p Profile) error {
	photoName, photoType, photoContent := attachmentColumns(p.ProfilePhoto)
	query := `
		UPDATE doctor_profiles
		SET full_name = $2, specialization = $3, experience_years = $4, hospital = $5,
			gender = $6, email = $7, address = $8,
			photo_filename = $9, photo_content_type = $10, photo_content = $11
		WHERE contact_number = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		p.ContactNumber, p.FullName, p.Specialization, p.Experience, p.Hospital,
		p.Gender, p.Email, p.Address, photoName, photoType, photoContent,
	)
	if err != nil {
		if translated := translatePQ(err); translated != err {
			return translated
		}
		return fmt.Errorf("update doctor profile: %w", err)
	}
	return requireRowAffected(result, "update doctor profile")
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, contact string) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM doctor_profiles WHERE contact_number = $1`, contact)
	if err != nil {
		return fmt.Errorf("delete doctor profile: %w", err)
	}
	return requireRowAffected(result, "delete doctor profile")
}

func (s *PostgresStore) CreateCertification(ctx context.Context, c Certification) error {
	query := `
		INSERT INTO doctor_certifications (
			doctor_contact, highest_degree, year_of_graduation, year_of_experience,
			yoga_certified, certification_type, issuing_authority, specialization, license_number,
			graduation_cert_filename, graduation_cert_content_type, graduation_cert_content,
			experience_letter_filename, experience_letter_content_type, experience_letter_content,
			resume_filename, resume_content_type, resume_content,
			license_filename, license_content_type, license_content
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
				$10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	gradName, gradType, gradContent := attachmentColumns(c.GraduationCertificate)
	expName, expType, expContent := attachmentColumns(c.ExperienceLetter)
	resumeName, resumeType, resumeContent := attachmentColumns(c.ResumeCV)
	licName, licType, licContent := attachmentColumns(c.License)

	_, err := s.execer(ctx).ExecContext(ctx, query,
		c.DoctorContact, c.HighestDegree, c.YearOfGraduation, c.YearOfExperience,
		c.YogaCertified, c.CertificationType, c.IssuingAuthority, c.Specialization, c.LicenseNumber,
		gradName, gradType, gradContent,
		expName, expType, expContent,
		resumeName, resumeType, resumeContent,
		licName, licType, licContent,
	)
	if err != nil {
		if translated := translatePQ(err); translated != err {
			return translated
		}
		return fmt.Errorf("insert doctor certification: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCertification(ctx context.Context, contact string) (Certification, error) {
	query := `
		SELECT doctor_contact, highest_degree, year_of_graduation, year_of_experience,
			   yoga_certified, certification_type, issuing_authority, specialization, license_number,
			   graduation_cert_filename, graduation_cert_content_type, graduation_cert_content,
			   experience_letter_filename, experience_letter_content_type, experience_letter_content,
			   resume_filename, resume_content_type, resume_content,
			   license_filename, license_content_type, license_content
		FROM doctor_certifications
		WHERE doctor_contact = $1
	`
	var (
		c                                  Certification
		gradName, gradType, gradContent    sql.NullString
		expName, expType, expContent       sql.NullString
		resName, resType, resContent       sql.NullString
		licName, licType, licContent       sql.NullString
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, contact).Scan(
		&c.DoctorContact, &c.HighestDegree, &c.YearOfGraduation, &c.YearOfExperience,
		&c.YogaCertified, &c.CertificationType, &c.IssuingAuthority, &c.Specialization, &c.LicenseNumber,
		&gradName, &gradType, &gradContent,
		&expName, &expType, &expContent,
		&resName, &resType, &resContent,
		&licName, &licType, &licContent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certification{}, sentinel.ErrNotFound
		}
		return Certification{}, fmt.Errorf("scan doctor certification: %w", err)
	}
	c.GraduationCertificate = scanAttachment(gradName, gradType, gradContent)
	c.ExperienceLetter = scanAttachment(expName, expType, expContent)
	c.ResumeCV = scanAttachment(resName, resType, resContent)
	c.License = scanAttachment(licName, licType, licContent)
	return c, nil
}

func (s *PostgresStore) UpdateCertification(ctx context.Context, c Certification) error {
	query := `
		UPDATE doctor_certifications
		SET highest_degree = $2, year_of_graduation = $3, year_of_experience = $4,
			yoga_certified = $5, certification_type = $6, issuing_authority = $7,
			specialization = $8, license_number = $9,
			graduation_cert_filename = $10, graduation_cert_content_type = $11, graduation_cert_content = $12,
			experience_letter_filename = $13, experience_letter_content_type = $14, experience_letter_content = $15,
			resume_filename = $16, resume_content_type = $17, resume_content = $18,
			license_filename = $19, license_content_type = $20, license_content = $21
		WHERE doctor_contact = $1
	`
	gradName, gradType, gradContent := attachmentColumns(c.GraduationCertificate)
	expName, expType, expContent := attachmentColumns(c.ExperienceLetter)
	resumeName, resumeType, resumeContent := attachmentColumns(c.ResumeCV)
	licName, licType, licContent := attachmentColumns(c.License)

	result, err := s.execer(ctx).ExecContext(ctx, query,
		c.DoctorContact, c.HighestDegree, c.YearOfGraduation, c.YearOfExperience,
		c.YogaCertified, c.CertificationType, c.IssuingAuthority, c.Specialization, c.LicenseNumber,
		gradName, gradType, gradContent,
		expName, expType, expContent,
		resumeName, resumeType, resumeContent,
		licName, licType, licContent,
	)
	if err != nil {
		return fmt.Errorf("update doctor certification: %w", err)
	}
	return requireRowAffected(result, "update doctor certification")
}

func (s *PostgresStore) DeleteCertification(ctx context.Context, contact string) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM doctor_certifications WHERE doctor_contact = $1`, contact)
	if err != nil {
		return fmt.Errorf("delete doctor certification: %w", err)
	}
	return requireRowAffected(result, "delete doctor certification")
}

func (s *PostgresStore) CreateDocument(ctx context.Context, d Document) error {
	query := `
		INSERT INTO doctor_documents (
			id, doctor_contact, doc_type, side, filename, content_type, content, content_length
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		d.ID, d.DoctorContact, d.DocType, d.Side, d.Filename, d.ContentType, d.Content, d.ContentLength,
	)
	if err != nil {
		if translated := translatePQ(err); translated != err {
			return translated
		}
		return fmt.Errorf("insert doctor document: %w", err)
	}
	return nil
}

// ListDocuments deliberately leaves content behind; callers fetch a single
// document when they need the payload.
func (s *PostgresStore) ListDocuments(ctx context.Context, contact string) ([]Document, error) {
	query := `
		SELECT id, doctor_contact, doc_type, side, filename, content_type, content_length
		FROM doctor_documents
		WHERE doctor_contact = $1
		ORDER BY id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, contact)
	if err != nil {
		return nil, fmt.Errorf("query doctor documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.DoctorContact, &d.DocType, &d.Side, &d.Filename, &d.ContentType, &d.ContentLength); err != nil {
			return nil, fmt.Errorf("scan doctor document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctor documents: %w", err)
	}
	return docs, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, contact, id string) (Document, error) {
	query := `
		SELECT id, doctor_contact, doc_type, side, filename, content_type, content, content_length
		FROM doctor_documents
		WHERE doctor_contact = $1 AND id = $2
	`
	var d Document
	err := s.execer(ctx).QueryRowContext(ctx, query, contact, id).Scan(
		&d.ID, &d.DoctorContact, &d.DocType, &d.Side, &d.Filename, &d.ContentType, &d.Content, &d.ContentLength,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("scan doctor document: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, d Document) error {
	query := `
		UPDATE doctor_documents
		SET doc_type = $3, side = $4, filename = $5, content_type = $6, content = $7, content_length = $8
		WHERE doctor_contact = $1 AND id = $2
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		d.DoctorContact, d.ID, d.DocType, d.Side, d.Filename, d.ContentType, d.Content, d.ContentLength,
	)
	if err != nil {
		return fmt.Errorf("update doctor document: %w", err)
	}
	return requireRowAffected(result, "update doctor document")
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, contact, id string) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM doctor_documents WHERE doctor_contact = $1 AND id = $2`, contact, id)
	if err != nil {
		return fmt.Errorf("delete doctor document: %w", err)
	}
	return requireRowAffected(result, "delete doctor document")
}

func (s *PostgresStore) CreateBankDetails(ctx context.Context, b BankDetails) error {
	qrName, qrType, qrContent := attachmentColumns(b.QRCode)
	query := `
		INSERT INTO doctor_bank_details (
			doctor_contact, account_holder_name, account_number, ifsc_code, upi_id, account_type,
			qr_filename, qr_content_type, qr_content
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		b.DoctorContact, b.AccountHolderName, b.AccountNumber, b.IFSCCode, b.UPIID, b.AccountType,
		qrName, qrType, qrContent,
	)
	if err != nil {
		if translated := translatePQ(err); translated != err {
			return translated
		}
		return fmt.Errorf("insert bank details: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBankDetails(ctx context.Context, contact string) (BankDetails, error) {
	query := `
		SELECT doctor_contact, account_holder_name, account_number, ifsc_code, upi_id, account_type,
			   qr_filename, qr_content_type, qr_content
		FROM doctor_bank_details
		WHERE doctor_contact = $1
	`
	var (
		b                         BankDetails
		qrName, qrType, qrContent sql.NullString
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, contact).Scan(
		&b.DoctorContact, &b.AccountHolderName, &b.AccountNumber, &b.IFSCCode, &b.UPIID, &b.AccountType,
		&qrName, &qrType, &qrContent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BankDetails{}, sentinel.ErrNotFound
		}
		return BankDetails{}, fmt.Errorf("scan bank details: %w", err)
	}
	b.QRCode = scanAttachment(qrName, qrType, qrContent)
	return b, nil
}

func (s *PostgresStore) UpdateBankDetails(ctx context.Context, b BankDetails) error {
	qrName, qrType, qrContent := attachmentColumns(b.QRCode)
	query := `
		UPDATE doctor_bank_details
		SET account_holder_name = $2, account_number = $3, ifsc_code = $4, upi_id = $5, account_type = $6,
			qr_filename = $7, qr_content_type = $8, qr_content = $9
		WHERE doctor_contact = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		b.DoctorContact, b.AccountHolderName, b.AccountNumber, b.IFSCCode, b.UPIID, b.AccountType,
		qrName, qrType, qrContent,
	)
	if err != nil {
		return fmt.Errorf("update bank details: %w", err)
	}
	return requireRowAffected(result, "update bank details")
}

func (s *PostgresStore) DeleteBankDetails(ctx context.Context, contact string) error {
	result, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM doctor_bank_details WHERE doctor_contact = $1`, contact)
	if err != nil {
		return fmt.Errorf("delete bank details: %w", err)
	}
	return requireRowAffected(result, "delete bank details")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var (
		p                               Profile
		photoName, photoType, photoBody sql.NullString
	)
	err := row.Scan(
		&p.ContactNumber, &p.FullName, &p.Specialization, &p.Experience, &p.Hospital,
		&p.Gender, &p.Email, &p.Address, &photoName, &photoType, &photoBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, sentinel.ErrNotFound
		}
		return Profile{}, fmt.Errorf("scan doctor profile: %w", err)
	}
	p.ProfilePhoto = scanAttachment(photoName, photoType, photoBody)
	return p, nil
}

func requireRowAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
