package session

import "time"

// Event is an auth state change emitted by a Provider.
type Event string

// Events
const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventUserUpdated    Event = "USER_UPDATED"
)

type (
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	Session struct {
		AccessToken string    `json:"access_token"`
		TokenType   string    `json:"token_type"`
		ExpiresAt   time.Time `json:"expires_at"`
		User        User      `json:"user"`
	}

	Profile struct {
		ID        string    `json:"id"` // auth user id
		FullName  string    `json:"full_name"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"created_at"`
	}

	// State is a consistent copy of the store. Pointers are nil when absent.
	State struct {
		Session *Session `json:"session"`
		User    *User    `json:"user"`
		Profile *Profile `json:"profile"`
		Loading bool     `json:"loading"`
	}

	// Credentials are checked locally before reaching the Provider.
	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	// SignUpCredentials also go through the password policy.
	SignUpCredentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
)

func (s State) IsAuthenticated() bool { return s.Session != nil }
