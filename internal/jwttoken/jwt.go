package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medregistry/internal/platform/middleware"
	dErrors "medregistry/pkg/domain-errors"
)

// Claims represents the JWT claims for our access and refresh tokens.
type Claims struct {
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	UserType    string `json:"user_type"`
	TokenUse    string `json:"token_use"`
	jwt.RegisteredClaims
}

const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey, issuer, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateToken signs a token for the given identity. tokenUse distinguishes
// access from refresh tokens so one cannot stand in for the other.
func (s *JWTService) GenerateToken(userID, phoneNumber, userType, tokenUse string, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:      userID,
		PhoneNumber: phoneNumber,
		UserType:    userType,
		TokenUse:    tokenUse,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// ValidateToken checks an access token and returns the middleware claims,
// satisfying middleware.JWTValidator.
func (s *JWTService) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != TokenUseAccess {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not an access token")
	}
	return &middleware.JWTClaims{
		UserID:      claims.UserID,
		PhoneNumber: claims.PhoneNumber,
		UserType:    claims.UserType,
	}, nil
}

// ValidateRefreshToken checks a refresh token and returns its full claims.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != TokenUseRefresh {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not a refresh token")
	}
	return claims, nil
}
