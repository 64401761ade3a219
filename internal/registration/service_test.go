package registration

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medregistry/internal/audit"
	"medregistry/internal/doctors"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/sentinel"
)

func newTestService(t *testing.T) (*Service, *MemorySessionStore, *doctors.MemoryStore) {
	t.Helper()
	sessions := NewMemorySessionStore()
	records := doctors.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditPub := audit.NewPublisher(logger, 64)

	svc := NewService(sessions, records, logger, nil, auditPub, testLimits, Config{
		SessionTTL:   24 * time.Hour,
		MaxDocuments: 3,
	})
	return svc, sessions, records
}

func validBankInput() BankDetailsInput {
	return BankDetailsInput{
		AccountHolderName:    "Asha Verma",
		AccountNumber:        "111222333",
		ConfirmAccountNumber: "111222333",
		IFSCCode:             "HDFC0001234",
		AccountType:          "savings",
	}
}

func validDocumentInput() DocumentInput {
	return DocumentInput{
		DocType: "aadhaar-card",
		Side:    "front",
		File: &doctors.Upload{
			Filename:    "front.png",
			ContentType: "image/png",
			Data:        []byte("image bytes"),
		},
	}
}

func completeThroughStep2(t *testing.T, svc *Service, key string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SubmitPersonalDetails(ctx, key, validPersonalInput(), "Chrome on Linux")
	require.NoError(t, err)
	require.NoError(t, svc.SubmitCertification(ctx, key, validCertificationInput()))
}

func TestService_FullHappyPath(t *testing.T) {
	ctx := context.Background()
	svc, sessions, records := newTestService(t)

	profile, err := svc.SubmitPersonalDetails(ctx, "sess-1", validPersonalInput(), "Chrome on Linux")
	require.NoError(t, err)
	require.Equal(t, "9876543210", profile.ContactNumber)

	require.NoError(t, svc.SubmitCertification(ctx, "sess-1", validCertificationInput()))

	count, err := svc.SubmitDocument(ctx, "sess-1", validDocumentInput())
	require.NoError(t, err)
	require.Equal(t, 1, count)

	second := validDocumentInput()
	second.Side = "back"
	count, err = svc.SubmitDocument(ctx, "sess-1", second)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	contact, err := svc.Commit(ctx, "sess-1", validBankInput())
	require.NoError(t, err)
	require.Equal(t, "9876543210", contact)

	// Session is gone.
	_, err = sessions.Get(ctx, "sess-1")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	// All four record kinds landed under the same contact.
	_, err = records.GetProfile(ctx, contact)
	require.NoError(t, err)
	_, err = records.GetCertification(ctx, contact)
	require.NoError(t, err)
	docs, err := records.ListDocuments(ctx, contact)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	bank, err := records.GetBankDetails(ctx, contact)
	require.NoError(t, err)
	require.Equal(t, "111222333", bank.AccountNumber)
}

func TestService_CommitWithZeroDocuments(t *testing.T) {
	ctx := context.Background()
	svc, _, records := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	contact, err := svc.Commit(ctx, "sess-1", validBankInput())
	require.NoError(t, err)

	docs, err := records.ListDocuments(ctx, contact)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestService_Step1OverwritesPriorSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	in := validPersonalInput()
	in.ContactNumber = "9123456789"
	_, err := svc.SubmitPersonalDetails(ctx, "sess-1", in, "")
	require.NoError(t, err)

	got, err := sessions.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "9123456789", got.PersonalDetails.ContactNumber)
	require.Nil(t, got.Certification)
	require.Empty(t, got.Documents)
}

func TestService_Step2WithoutStep1(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.SubmitCertification(context.Background(), "sess-1", validCertificationInput())
	require.True(t, dErrors.Is(err, dErrors.CodePrecondition))
	require.ErrorIs(t, err, dErrors.New(dErrors.CodePrecondition, "Step 1 (personal details) must be completed first."))
}

func TestService_MissingSessionOutranksBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	// An empty payload would fail validation, but without a session the
	// precondition outcome is the one reported.
	err := svc.SubmitCertification(ctx, "sess-1", CertificationInput{})
	require.True(t, dErrors.Is(err, dErrors.CodePrecondition))

	_, err = svc.SubmitDocument(ctx, "sess-1", DocumentInput{})
	require.True(t, dErrors.Is(err, dErrors.CodePrecondition))
}

func TestService_ExpiryOutranksBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	err := svc.SubmitCertification(ctx, "sess-1", CertificationInput{})
	require.True(t, dErrors.Is(err, dErrors.CodeSessionExpired))
}

func TestService_Step3WithoutCertification(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.SubmitPersonalDetails(ctx, "sess-1", validPersonalInput(), "")
	require.NoError(t, err)

	_, err = svc.SubmitDocument(ctx, "sess-1", validDocumentInput())
	require.True(t, dErrors.Is(err, dErrors.CodePrecondition))
}

func TestService_Step4WithoutSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Commit(context.Background(), "sess-1", validBankInput())
	require.True(t, dErrors.Is(err, dErrors.CodePrecondition))
}

func TestService_DocumentCap(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	for i := 0; i < 3; i++ {
		_, err := svc.SubmitDocument(ctx, "sess-1", validDocumentInput())
		require.NoError(t, err)
	}

	_, err := svc.SubmitDocument(ctx, "sess-1", validDocumentInput())
	require.True(t, dErrors.Is(err, dErrors.CodeValidation))
}

func TestService_ExpiredSessionIsDestroyed(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	err := svc.SubmitCertification(ctx, "sess-1", validCertificationInput())
	require.True(t, dErrors.Is(err, dErrors.CodeSessionExpired))

	// Lazy expiry deleted the session; it is unreachable afterward.
	_, err = sessions.Get(ctx, "sess-1")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestService_ExpiredCommit(t *testing.T) {
	ctx := context.Background()
	svc, sessions, records := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err := svc.Commit(ctx, "sess-1", validBankInput())
	require.True(t, dErrors.Is(err, dErrors.CodeSessionExpired))

	_, err = sessions.Get(ctx, "sess-1")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	profiles, err := records.ListProfiles(ctx)
	require.NoError(t, err)
	require.Empty(t, profiles)
}

func TestService_BankMismatchCreatesNothing(t *testing.T) {
	ctx := context.Background()
	svc, sessions, records := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	in := validBankInput()
	in.ConfirmAccountNumber = "999"
	_, err := svc.Commit(ctx, "sess-1", in)
	require.True(t, dErrors.Is(err, dErrors.CodeValidation))

	profiles, err := records.ListProfiles(ctx)
	require.NoError(t, err)
	require.Empty(t, profiles)

	// Session survives for a corrected retry.
	_, err = sessions.Get(ctx, "sess-1")
	require.NoError(t, err)
}

func TestService_CommitConflictPreservesSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions, records := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	// Another doctor already committed this contact number.
	require.NoError(t, records.CreateProfile(ctx, doctors.Profile{
		ContactNumber: "9876543210",
		FullName:      "Someone Else",
		Email:         "else@example.com",
	}))

	_, err := svc.Commit(ctx, "sess-1", validBankInput())
	require.True(t, dErrors.Is(err, dErrors.CodeConflict))

	// Rollback: no certification or bank details for the squatter either.
	_, err = records.GetCertification(ctx, "9876543210")
	require.Error(t, err)

	_, err = sessions.Get(ctx, "sess-1")
	require.NoError(t, err)
}

func TestService_ConcurrentDoubleCommit(t *testing.T) {
	ctx := context.Background()
	svc, _, records := newTestService(t)
	completeThroughStep2(t, svc, "sess-1")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Commit(ctx, "sess-1", validBankInput())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		ok := dErrors.Is(err, dErrors.CodePrecondition) || dErrors.Is(err, dErrors.CodeConflict)
		require.True(t, ok, "unexpected commit error: %v", err)
	}
	require.Equal(t, 1, succeeded)

	profiles, err := records.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
}
