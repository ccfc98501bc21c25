package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/cookie-auth/internal/api/dto"
	"github.com/ticketdesk/cookie-auth/internal/auth"
	"github.com/ticketdesk/cookie-auth/internal/service"
	apperrors "github.com/ticketdesk/cookie-auth/pkg/util/errorutil"
)

// AuthHandler exposes sign-up, sign-in and session endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	tokens *auth.TokenService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{auth: authService, tokens: tokens}
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if problems := req.Validate(); len(problems) > 0 {
		return apperrors.NewValidationError("invalid sign-up request", problems)
	}

	user, err := h.auth.SignUp(c.UserContext(), service.SignUpInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserInfo(user)})
}

// SignIn handles POST /api/auth/signin and sets the session cookie.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, cookie, err := h.auth.SignIn(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(cookie.Fiber())
	return c.JSON(fiber.Map{"data": dto.NewUserInfo(user)})
}

// SignOut handles POST /api/auth/signout and clears the session cookie.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	token, _ := h.tokens.ExtractFromCookie(c)
	c.Cookie(h.auth.SignOut(c.UserContext(), token).Fiber())
	return c.JSON(dto.MessageResponse{Message: "you've been signed out"})
}

// CurrentUser handles GET /api/auth/user.
func (h *AuthHandler) CurrentUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserInfo(principal.User)})
}
