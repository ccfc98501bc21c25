package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/ticketdesk/cookie-auth/internal/api/http/handlers"
	"github.com/ticketdesk/cookie-auth/internal/auth"
	"github.com/ticketdesk/cookie-auth/internal/domain"
	"github.com/ticketdesk/cookie-auth/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Content        *handlers.ContentHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Everything that reads the session cookie
// lives under auth.CookiePath so browsers send it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group(auth.CookiePath)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/signout", cfg.Auth.SignOut)
	authGroup.Get("/user", cfg.AuthMiddleware.Handle, cfg.Auth.CurrentUser)

	authenticate := cfg.AuthMiddleware.Handle
	content := api.Group("/test")
	content.Get("/all", cfg.Content.Public)
	content.Get("/user", authenticate, auth.RequireRole(domain.RoleUser, domain.RoleModerator, domain.RoleAdmin), cfg.Content.User)
	content.Get("/mod", authenticate, auth.RequireRole(domain.RoleModerator), cfg.Content.Moderator)
	content.Get("/admin", authenticate, auth.RequireRole(domain.RoleAdmin), cfg.Content.Admin)
}
