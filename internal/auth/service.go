package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medregistry/internal/audit"
	"medregistry/internal/jwttoken"
	dErrors "medregistry/pkg/domain-errors"
	"medregistry/pkg/platform/sentinel"
)

const otpDigits = 6

var (
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	userTypes = map[string]bool{
		UserTypeUser:            true,
		UserTypeYogaTrainer:     true,
		UserTypeYogaDoctor:      true,
		UserTypePhysiotherapist: true,
	}
)

// SignupInput is the raw signup form.
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	UserType string `json:"user_type"`
}

// Service runs the signup and login challenge flows. Codes are random
// six-digit strings, bcrypt-hashed before storage, and consumed on first
// successful verification.
type Service struct {
	users      UserStore
	otps       OTPStore
	tokens     *jwttoken.JWTService
	logger     *slog.Logger
	audit      *audit.Publisher
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(users UserStore, otps OTPStore, tokens *jwttoken.JWTService, logger *slog.Logger, auditPub *audit.Publisher, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		users:      users,
		otps:       otps,
		tokens:     tokens,
		logger:     logger,
		audit:      auditPub,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func generateCode() (string, error) {
	upper := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		upper.Mul(upper, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

func validateSignup(in SignupInput) error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Username) == "" {
		fields["username"] = "This field is required."
	}
	if !emailRe.MatchString(in.Email) {
		fields["email"] = "Enter a valid email address."
	}
	if !phoneRe.MatchString(in.Phone) {
		fields["phone"] = "Enter a valid 10-digit phone number."
	}
	if !userTypes[in.UserType] {
		fields["user_type"] = "Invalid user type."
	}
	if len(fields) > 0 {
		return dErrors.WithFields(dErrors.CodeValidation, "Invalid data provided.", fields)
	}
	return nil
}

// Signup stages a new account behind a one-time code. The account is not
// created until VerifySignup succeeds. The code is returned to the caller;
// there is no SMS gateway in this deployment.
func (s *Service) Signup(ctx context.Context, in SignupInput) (string, error) {
	if err := validateSignup(in); err != nil {
		return "", err
	}
	if _, err := s.users.GetUserByPhone(ctx, in.Phone); err == nil {
		return "", dErrors.New(dErrors.CodeConflict, "An account with this phone number already exists.")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing account")
	}

	code, err := s.issueChallenge(ctx, in.Phone, &PendingUser{
		Username: strings.TrimSpace(in.Username),
		Email:    in.Email,
		Phone:    in.Phone,
		UserType: in.UserType,
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// VerifySignup consumes the challenge, creates the account, and signs the
// caller in.
func (s *Service) VerifySignup(ctx context.Context, phone, code string) (User, TokenPair, error) {
	ch, err := s.checkCode(ctx, phone, code)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	if ch.Signup == nil {
		return User{}, TokenPair{}, dErrors.New(dErrors.CodePrecondition, "No pending signup for this phone number.")
	}

	user := User{
		ID:        uuid.NewString(),
		Username:  ch.Signup.Username,
		Email:     ch.Signup.Email,
		Phone:     ch.Signup.Phone,
		UserType:  ch.Signup.UserType,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return User{}, TokenPair{}, dErrors.New(dErrors.CodeConflict, "An account with these details already exists.")
		}
		return User{}, TokenPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}
	s.consumeChallenge(ctx, phone)

	pair, err := s.issueTokens(user)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	s.audit.Emit(ctx, audit.Event{
		Action:        audit.ActionUserSignedUp,
		ContactNumber: user.Phone,
		Detail:        user.UserType,
	})
	return user, pair, nil
}

// Login issues a fresh code for an existing account.
func (s *Service) Login(ctx context.Context, phone string) (string, error) {
	if !phoneRe.MatchString(phone) {
		return "", dErrors.WithFields(dErrors.CodeValidation, "Invalid data provided.", map[string]string{
			"phone": "Enter a valid 10-digit phone number.",
		})
	}
	if _, err := s.users.GetUserByPhone(ctx, phone); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "No account found for this phone number.")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return s.issueChallenge(ctx, phone, nil)
}

// VerifyLogin consumes the challenge and mints a token pair.
func (s *Service) VerifyLogin(ctx context.Context, phone, code string) (User, TokenPair, error) {
	if _, err := s.checkCode(ctx, phone, code); err != nil {
		return User{}, TokenPair{}, err
	}
	user, err := s.users.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, TokenPair{}, dErrors.New(dErrors.CodeNotFound, "No account found for this phone number.")
		}
		return User{}, TokenPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	s.consumeChallenge(ctx, phone)

	pair, err := s.issueTokens(user)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	s.audit.Emit(ctx, audit.Event{
		Action:        audit.ActionUserLoggedIn,
		ContactNumber: user.Phone,
	})
	return user, pair, nil
}

// Refresh trades a valid refresh token for a fresh pair. The account is
// re-read so revoked or deleted users stop refreshing.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired refresh token.")
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return TokenPair{}, dErrors.New(dErrors.CodeUnauthorized, "Account no longer exists.")
		}
		return TokenPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return s.issueTokens(user)
}

// Me resolves the authenticated user's record.
func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return user, nil
}

func (s *Service) issueChallenge(ctx context.Context, phone string, pending *PendingUser) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash verification code")
	}
	ch := Challenge{CodeHash: hash, Signup: pending, IssuedAt: s.now().UTC()}
	if err := s.otps.Put(ctx, phone, ch); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification code")
	}
	return code, nil
}

func (s *Service) checkCode(ctx context.Context, phone, code string) (Challenge, error) {
	ch, err := s.otps.Get(ctx, phone)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Challenge{}, dErrors.New(dErrors.CodeUnauthorized, "Verification code expired or not found.")
	}
	if err != nil {
		return Challenge{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification code")
	}
	if bcrypt.CompareHashAndPassword(ch.CodeHash, []byte(code)) != nil {
		return Challenge{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid verification code.")
	}
	return ch, nil
}

// consumeChallenge is best-effort: a leftover entry just ages out.
func (s *Service) consumeChallenge(ctx context.Context, phone string) {
	if err := s.otps.Delete(ctx, phone); err != nil {
		s.logger.WarnContext(ctx, "failed to delete verification code", "error", err.Error())
	}
}

func (s *Service) issueTokens(user User) (TokenPair, error) {
	access, err := s.tokens.GenerateToken(user.ID, user.Phone, user.UserType, jwttoken.TokenUseAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}
	refresh, err := s.tokens.GenerateToken(user.ID, user.Phone, user.UserType, jwttoken.TokenUseRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign refresh token")
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}
