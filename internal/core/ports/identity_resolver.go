package ports

import (
	"context"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// ResolvedIdentity is the outcome of resolving an optional bearer credential.
// IssuedToken is non-empty exactly when a new anonymous identity was
// provisioned during resolution; the transport layer must forward it to the
// client so the session becomes stable on subsequent calls.
type ResolvedIdentity struct {
	User        *domain.User
	IssuedToken string
}

// IdentityResolver turns an optional Authorization header into an identity.
type IdentityResolver interface {
	// Resolve handles four cases:
	//   - no header, provisioning allowed: a fresh anonymous identity is
	//     created and returned together with a newly issued token.
	//   - no header, provisioning disallowed: a nil-user result, no error.
	//   - header present but malformed or failing verification:
	//     domain.ErrUnauthorized. A present-but-invalid credential is never
	//     silently replaced by an anonymous one.
	//   - header verifies: the identity is looked up; a missing subject falls
	//     through to the provisioning branch above.
	Resolve(ctx context.Context, bearerHeader string, allowAnonymous bool) (*ResolvedIdentity, error)
}
