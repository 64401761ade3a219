package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medregistry/internal/audit"
	"medregistry/internal/auth"
	"medregistry/internal/jwttoken"
	"medregistry/pkg/testutil"
)

func setupHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewJWTService("test-signing-key", "medregistry", "medregistry-api")
	svc := auth.NewService(
		auth.NewMemoryUserStore(),
		auth.NewMemoryOTPStore(5*time.Minute),
		tokens,
		logger,
		audit.NewPublisher(logger, 16),
		15*time.Minute,
		7*24*time.Hour,
	)

	h := New(svc, logger, nil, tokens)
	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		h.Register(r)
	})
	return r
}

func signupBody() map[string]string {
	return map[string]string{
		"username":  "asha",
		"email":     "asha@example.com",
		"phone":     "9876543210",
		"user_type": "user",
	}
}

// signUp walks the two-step signup and returns the issued token pair.
func signUp(t *testing.T, h http.Handler) auth.TokenPair {
	t.Helper()

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", signupBody()))
	testutil.AssertSuccess(t, rr, http.StatusOK, "Verification code sent.")
	otp := testutil.UnmarshalData[map[string]string](t, rr)

	rr = testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify-signup", map[string]string{
		"phone": "9876543210",
		"otp":   (*otp)["otp"],
	}))
	testutil.AssertSuccess(t, rr, http.StatusCreated, "Account created successfully.")
	session := testutil.UnmarshalData[struct {
		User   auth.User      `json:"user"`
		Tokens auth.TokenPair `json:"tokens"`
	}](t, rr)
	require.Equal(t, "asha", session.User.Username)
	return session.Tokens
}

func TestSignupVerifyAndMe(t *testing.T) {
	h := setupHandler(t)
	tokens := signUp(t, h)

	req := testutil.NewRequest(t, http.MethodGet, "/auth/me")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rr := testutil.DoRequest(h, req)
	testutil.AssertSuccess(t, rr, http.StatusOK, "Account retrieved successfully.")
	user := testutil.UnmarshalData[auth.User](t, rr)
	assert.Equal(t, "9876543210", user.Phone)
}

func TestMeRequiresToken(t *testing.T) {
	h := setupHandler(t)

	rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/auth/me"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestSignupValidationErrors(t *testing.T) {
	h := setupHandler(t)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"phone": "12",
	}))
	testutil.AssertError(t, rr, http.StatusBadRequest, "Invalid data provided.")
	fields := testutil.UnmarshalData[map[string]string](t, rr)
	assert.Contains(t, *fields, "phone")
}

func TestLoginAndVerify(t *testing.T) {
	h := setupHandler(t)
	signUp(t, h)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"phone": "9876543210",
	}))
	testutil.AssertSuccess(t, rr, http.StatusOK, "Verification code sent.")
	otp := testutil.UnmarshalData[map[string]string](t, rr)

	rr = testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify-login", map[string]string{
		"phone": "9876543210",
		"otp":   (*otp)["otp"],
	}))
	testutil.AssertSuccess(t, rr, http.StatusOK, "Logged in successfully.")
}

func TestVerifyLoginWrongCode(t *testing.T) {
	h := setupHandler(t)
	signUp(t, h)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"phone": "9876543210",
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/verify-login", map[string]string{
		"phone": "9876543210",
		"otp":   "000000",
	}))
	testutil.AssertError(t, rr, http.StatusUnauthorized, "Invalid verification code.")
}

func TestRefreshEndpoint(t *testing.T) {
	h := setupHandler(t)
	tokens := signUp(t, h)

	rr := testutil.DoRequest(h, testutil.NewJSONRequest(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": tokens.RefreshToken,
	}))
	testutil.AssertSuccess(t, rr, http.StatusOK, "Token refreshed.")
	pair := testutil.UnmarshalData[auth.TokenPair](t, rr)
	assert.NotEmpty(t, pair.AccessToken)
}
