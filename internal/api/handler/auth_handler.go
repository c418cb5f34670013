package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/adboard/ad-directory/internal/api/middleware"
	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/ports"
)

// AuthHandler handles signup, login, and identity introspection.
type AuthHandler struct {
	auth     ports.AuthService
	resolver ports.IdentityResolver
}

func NewAuthHandler(auth ports.AuthService, resolver ports.IdentityResolver) *AuthHandler {
	return &AuthHandler{auth: auth, resolver: resolver}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Signup creates a new account.
//
// No credential is required. When the caller does present one it must be
// valid, and a superadmin caller elevates the new account to role admin.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "New account credentials"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	elevate := false
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		resolved, err := h.resolver.Resolve(c.Request().Context(), header, false)
		if err != nil {
			return err
		}
		elevate = resolved.User != nil && resolved.User.Role == domain.RoleSuperadmin
	}

	user, err := h.auth.Signup(c.Request().Context(), req.Username, req.Password, elevate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Token authenticates a user and returns a bearer token.
//
// Accepts the OAuth2 password-grant form shape (grant_type is ignored).
//
// @Summary      Obtain a token by username and password
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return domain.ErrUnauthorized
	}

	token, err := h.auth.Login(c.Request().Context(), username, password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the identity behind the presented credential.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, user)
}
