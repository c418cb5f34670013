package ports

import (
	"context"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// UserRepository defines persistence for identities. Identities are never
// deleted; role changes only happen through superadmin-elevated signup.
type UserRepository interface {
	// Create persists a new identity. Returns domain.ErrUserExists when the
	// username is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no identity matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
