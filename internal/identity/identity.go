package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredential signals the presented credential could not be
	// verified.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrAccountExists signals the provider already has an account for the
	// email address.
	ErrAccountExists = errors.New("account already exists")
	// ErrUnavailable signals the identity provider could not be reached.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Verifier checks bearer credentials issued by the identity provider and
// returns the subject id they were issued for.
type Verifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

// Provider manages accounts at the identity provider. Passwords never touch
// local storage; the provider owns them.
type Provider interface {
	Verifier
	CreateAccount(ctx context.Context, email, password string) (string, error)
}
