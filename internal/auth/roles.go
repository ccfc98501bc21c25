package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/cookie-auth/internal/domain"
	apperrors "github.com/ticketdesk/cookie-auth/pkg/util/errorutil"
)

// RequireRole lets the request through when the principal holds any of allowed.
// With no roles given it only requires an authenticated principal.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowed) > 0 && !principal.User.HasAnyRole(allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
