package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/ports"
)

// AuthService implements signup and login over the identity store.
type AuthService struct {
	users  ports.UserRepository
	tokens *TokenService
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens *TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Signup creates a new account with role user, or role admin when elevate is
// true (the caller proved a superadmin credential).
func (s *AuthService) Signup(ctx context.Context, username, password string, elevate bool) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if elevate {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user signed up")
	return created, nil
}

// Login verifies the password and returns a fresh token. Wrong username and
// wrong password both collapse to domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	if !CheckPassword(password, user.PasswordHash) {
		return "", domain.ErrUnauthorized
	}
	return s.tokens.Issue(user.Username, user.Role)
}
