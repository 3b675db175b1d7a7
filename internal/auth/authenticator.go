// Package auth issues and verifies user credentials and session tokens.
package auth

import (
	"context"

	"github.com/arkadiusoo/travelmate/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given email, name and credential.
	// The credential format depends on the implementation.
	Register(ctx context.Context, in Registration) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

// Registration is the data supplied when creating an account.
type Registration struct {
	Email      string
	FirstName  string
	LastName   string
	Credential string
}
