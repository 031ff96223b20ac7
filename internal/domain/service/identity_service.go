package service

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailExists         = errors.New("email already registered")
	ErrWeakPassword        = errors.New("password too weak")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrRequiresRecentLogin = errors.New("recent login required")
	ErrIdentityMismatch    = errors.New("credential belongs to another identity")
	ErrIdentityUnavailable = errors.New("identity service unavailable")
)

// Credential is a freshly issued session for one identity.
type Credential struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	IssuedAt     time.Time
}

// IdentityService is the managed authentication backend. Implementations
// translate backend error codes into the sentinel errors above.
type IdentityService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*Credential, error)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	// Reauthenticate re-proves an existing identity; ErrIdentityMismatch when
	// the password belongs to a different account.
	Reauthenticate(ctx context.Context, uid, email, password string) (*Credential, error)
	// Delete removes the identity behind idToken and fails with
	// ErrRequiresRecentLogin when the token is too old for that.
	Delete(ctx context.Context, idToken string) error
	SignOut(ctx context.Context, uid string) error
}
