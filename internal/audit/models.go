package audit

import "time"

// Registration lifecycle actions.
const (
	ActionRegistrationStarted   = "registration.started"
	ActionRegistrationCommitted = "registration.committed"
	ActionRegistrationExpired   = "registration.expired"
	ActionProfileDeleted        = "doctor.profile_deleted"
	ActionUserSignedUp          = "auth.user_signed_up"
	ActionUserLoggedIn          = "auth.user_logged_in"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time `json:"timestamp"`
	Action        string    `json:"action"`
	ContactNumber string    `json:"contact_number,omitempty"`
	SessionKey    string    `json:"session_key,omitempty"`
	Device        string    `json:"device,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	Detail        string    `json:"detail,omitempty"`
}
