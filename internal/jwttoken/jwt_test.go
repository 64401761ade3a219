package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medregistry/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)

const (
	userID      = "user-1"
	phoneNumber = "9999999999"
	userType    = "yoga_doctor"
)

func Test_GenerateToken(t *testing.T) {
	token, err := jwtService.GenerateToken(userID, phoneNumber, userType, TokenUseAccess, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, phoneNumber, claims.PhoneNumber)
	assert.Equal(t, userType, claims.UserType)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateToken(userID, phoneNumber, userType, TokenUseAccess, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func Test_ValidateToken_RejectsRefreshToken(t *testing.T) {
	token, err := jwtService.GenerateToken(userID, phoneNumber, userType, TokenUseRefresh, time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func Test_ValidateRefreshToken(t *testing.T) {
	token, err := jwtService.GenerateToken(userID, phoneNumber, userType, TokenUseRefresh, time.Hour)
	require.NoError(t, err)

	claims, err := jwtService.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, TokenUseRefresh, claims.TokenUse)
}
