package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/ports"
)

// IdentityResolver resolves an optional bearer credential to an identity,
// silently provisioning an anonymous one when allowed.
type IdentityResolver struct {
	users  ports.UserRepository
	tokens *TokenService
	logger zerolog.Logger
}

func NewIdentityResolver(users ports.UserRepository, tokens *TokenService, logger zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, tokens: tokens, logger: logger}
}

// Resolve implements ports.IdentityResolver. A present-but-invalid header is
// always rejected with domain.ErrUnauthorized; it never falls through to the
// anonymous branch. A token whose subject no longer resolves does fall
// through, since the credential itself is sound.
func (r *IdentityResolver) Resolve(ctx context.Context, bearerHeader string, allowAnonymous bool) (*ports.ResolvedIdentity, error) {
	if bearerHeader != "" {
		token, err := extractBearer(bearerHeader)
		if err != nil {
			return nil, domain.ErrUnauthorized
		}

		subject, _, err := r.tokens.Verify(token)
		if err != nil {
			return nil, domain.ErrUnauthorized
		}

		user, err := r.users.FindByUsername(ctx, subject)
		switch {
		case err == nil:
			return &ports.ResolvedIdentity{User: user}, nil
		case errors.Is(err, domain.ErrUserNotFound):
			// Verified token for a vanished subject: treated like no
			// credential. Any other lookup failure is an infrastructure
			// error and must not demote the caller to an anonymous identity.
		default:
			return nil, fmt.Errorf("resolve identity: %w", err)
		}
	}

	if !allowAnonymous {
		return &ports.ResolvedIdentity{}, nil
	}
	return r.provision(ctx)
}

// provision creates a throwaway identity with a random unique username and
// password, and issues a token for it so the client can keep the session.
func (r *IdentityResolver) provision(ctx context.Context) (*ports.ResolvedIdentity, error) {
	hash, err := HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     "anon_" + uuid.NewString(),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := r.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("provision anonymous identity: %w", err)
	}

	token, err := r.tokens.Issue(created.Username, created.Role)
	if err != nil {
		return nil, fmt.Errorf("provision anonymous identity: %w", err)
	}

	r.logger.Info().Str("username", created.Username).Msg("anonymous identity provisioned")
	return &ports.ResolvedIdentity{User: created, IssuedToken: token}, nil
}

// extractBearer splits an Authorization header of the form "Bearer <token>".
func extractBearer(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrUnauthorized
	}
	return parts[1], nil
}
