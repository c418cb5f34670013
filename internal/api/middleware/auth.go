package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/ports"
)

// userContextKey is where Authenticate stores the resolved identity.
const userContextKey = "user"

// Authenticate requires a valid bearer credential whose subject still exists,
// and injects the resolved identity into the request context. Anonymous
// provisioning is disabled on this path: a missing, malformed, or expired
// credential and a vanished subject all map to 401 at the error handler.
func Authenticate(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.ErrUnauthorized
			}

			resolved, err := resolver.Resolve(c.Request().Context(), header, false)
			if err != nil {
				return err
			}
			if resolved.User == nil {
				return domain.ErrUnauthorized
			}

			c.Set(userContextKey, resolved.User)
			return next(c)
		}
	}
}

// CurrentUser extracts the identity injected by Authenticate.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok
}
