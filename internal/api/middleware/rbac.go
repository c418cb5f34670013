package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// RequireRole gates a protected operation behind a minimum role. Roles are
// ordered user < admin < superadmin, so a superadmin passes an admin gate.
// A request without an authenticated identity maps to 401; an identity below
// the minimum maps to 403.
func RequireRole(min domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return domain.ErrUnauthorized
			}
			if !user.Role.AtLeast(min) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
