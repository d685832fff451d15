package auth

import (
	"time"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// User represents an application account.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at"`
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID    int64
	Email     string
	SessionID string
}

// Session is the token half of a sign-in response.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   int64  `json:"expires_at"`
}

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	User    *User   `json:"user"`
	Session Session `json:"session"`
}

// SignOutResult confirms a revoked session.
type SignOutResult struct {
	Message string `json:"message"`
}

// Errors reported to clients verbatim.
var (
	ErrMissingCredentials = &authError{msg: "Email and password are required", kind: httpx.ErrValidation}
	ErrInvalidCredentials = &authError{msg: "Invalid login credentials", kind: httpx.ErrUnauthorized}
	ErrInvalidToken       = &authError{msg: "Invalid or expired token", kind: httpx.ErrUnauthorized}
	ErrMissingToken       = &authError{msg: "Missing bearer token", kind: httpx.ErrUnauthorized}
	ErrEmailTaken         = &authError{msg: "Email is already registered", kind: httpx.ErrValidation}
)

type authError struct {
	msg  string
	kind error
}

func (e *authError) Error() string { return e.msg }

func (e *authError) Unwrap() error { return e.kind }
