package ports

import (
	"context"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// AuthService implements signup and login.
type AuthService interface {
	// Signup creates a new account. When elevate is true (the caller holds a
	// superadmin credential) the account is created with role admin, otherwise
	// role user.
	Signup(ctx context.Context, username, password string, elevate bool) (*domain.User, error)
	// Login verifies the password and returns a signed token.
	Login(ctx context.Context, username, password string) (string, error)
}
