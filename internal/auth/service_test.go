package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medregistry/internal/audit"
	"medregistry/internal/jwttoken"
	dErrors "medregistry/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *MemoryOTPStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	otps := NewMemoryOTPStore(5 * time.Minute)
	svc := NewService(
		NewMemoryUserStore(),
		otps,
		jwttoken.NewJWTService("test-signing-key", "medregistry", "medregistry-api"),
		logger,
		audit.NewPublisher(logger, 16),
		15*time.Minute,
		7*24*time.Hour,
	)
	return svc, otps
}

func validSignup(phone string) SignupInput {
	return SignupInput{
		Username: "asha",
		Email:    "asha@example.com",
		Phone:    phone,
		UserType: UserTypeUser,
	}
}

func TestSignupAndVerify(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Signup(ctx, validSignup("9876543210"))
	require.NoError(t, err)
	assert.Len(t, code, 6)

	user, pair, err := svc.VerifySignup(ctx, "9876543210", code)
	require.NoError(t, err)
	assert.Equal(t, "asha", user.Username)
	assert.Equal(t, UserTypeUser, user.UserType)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	got, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Phone, got.Phone)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), SignupInput{
		Email:    "not-an-email",
		Phone:    "12",
		UserType: "astronaut",
	})
	var de *dErrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, dErrors.CodeValidation, de.Code)
	assert.Contains(t, de.Fields, "username")
	assert.Contains(t, de.Fields, "email")
	assert.Contains(t, de.Fields, "phone")
	assert.Contains(t, de.Fields, "user_type")
}

func TestSignupExistingPhoneConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Signup(ctx, validSignup("9876543210"))
	require.NoError(t, err)
	_, _, err = svc.VerifySignup(ctx, "9876543210", code)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, validSignup("9876543210"))
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestVerifyWrongCode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Signup(ctx, validSignup("9876543210"))
	require.NoError(t, err)

	_, _, err = svc.VerifySignup(ctx, "9876543210", "000000")
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))

	// A wrong guess does not burn the challenge.
	_, _, err = svc.VerifySignup(ctx, "9876543210", code)
	require.NoError(t, err)
}

func TestVerifyIsSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Signup(ctx, validSignup("9876543210"))
	require.NoError(t, err)
	_, _, err = svc.VerifySignup(ctx, "9876543210", code)
	require.NoError(t, err)

	_, _, err = svc.VerifySignup(ctx, "9876543210", code)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestLoginFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Signup(ctx, validSignup("9876543210"))
	require.NoError(t, err)
	_, _, err = svc.VerifySignup(ctx, "9876543210", code)
	require.NoError(t, err)

	loginCode, err := svc.Login(ctx, "9876543210")
	require.NoError(t, err)
	require.Len(t, loginCode, 6)

	user, pair, err := svc.VerifyLogin(ctx, "9876543210", loginCode)
	require.NoError(t, err)
	assert.Equal(t, "asha", user.Username)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLoginUnknownPhone(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "9999999999")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestExpiredCodeRejected(t *testing.T) {
	svc, otps := newTestService(t)
	ctx := context.Background()

	code, err := svc.Signup(ctx, validSignup("9876543210"))
	require.NoError(t, err)

	otps.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	_, _, err = svc.VerifySignup(ctx, "9876543210", code)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	code, err := svc.Signup(ctx, validSignup("9876543210"))
	require.NoError(t, err)
	_, pair, err := svc.VerifySignup(ctx, "9876543210", code)
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// An access token cannot stand in for a refresh token.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
