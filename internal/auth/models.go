// Package auth implements phone-based signup and login. Both flows are
// passwordless: a short-lived one-time code is issued, and verifying it
// either creates the account or mints a token pair.
package auth

import "time"

// User roles recognized by the platform.
const (
	UserTypeUser            = "user"
	UserTypeYogaTrainer     = "yoga_trainer"
	UserTypeYogaDoctor      = "yoga_doctor"
	UserTypePhysiotherapist = "physiotherapist"
)

// User is an account record. Username, email, and phone are each unique.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	UserType  string    `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingUser is the signup payload staged until its code is verified. No
// account exists yet while a signup is pending.
type PendingUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	UserType string `json:"user_type"`
}

// Challenge is a stored one-time code. Only the bcrypt hash of the code is
// kept; Signup is non-nil for signup challenges and nil for login.
type Challenge struct {
	CodeHash []byte       `json:"code_hash"`
	Signup   *PendingUser `json:"signup,omitempty"`
	IssuedAt time.Time    `json:"issued_at"`
}

// TokenPair is what a verified login hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
