package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketdesk/cookie-auth/internal/domain"
	"github.com/ticketdesk/cookie-auth/internal/observability"
	"github.com/ticketdesk/cookie-auth/internal/repository"
	apperrors "github.com/ticketdesk/cookie-auth/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Subject string
	User    *domain.User
}

// AuthMiddleware authenticates requests from the session cookie and loads the user.
type AuthMiddleware struct {
	tokens  *TokenService
	users   repository.UserRepository
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenService, users repository.UserRepository, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, users: users, metrics: metrics, logger: logger}
}

// Handle enforces authentication for protected routes. The reason a token was
// rejected is logged by the token service and never returned to the client.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := m.tokens.ExtractFromCookie(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	result := m.tokens.Validate(token)
	m.metrics.RecordTokenValidation(result.String())
	if result != ValidationValid {
		return apperrors.NewUnauthorized("authentication required")
	}

	subject, err := m.tokens.ExtractSubject(token)
	if err != nil || subject == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := m.users.GetByUsername(c.UserContext(), subject)
	if err != nil {
		if repository.IsNotFound(err) {
			m.logger.Info("session for unknown user", zap.String("subject", subject))
			return apperrors.NewUnauthorized("authentication required")
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(principalKey, &Principal{Subject: subject, User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}
