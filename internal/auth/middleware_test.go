package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ticketdesk/cookie-auth/internal/domain"
	"github.com/ticketdesk/cookie-auth/internal/observability"
	"github.com/ticketdesk/cookie-auth/internal/repository"
	apperrors "github.com/ticketdesk/cookie-auth/pkg/util/errorutil"
)

type middlewareFixture struct {
	app     *fiber.App
	tokens  *TokenService
	clock   *fakeClock
	metrics *observability.Metrics
}

func newMiddlewareFixture(t *testing.T) *middlewareFixture {
	t.Helper()
	clock := &fakeClock{now: time.Now()}
	tokens := newTestService(t, WithClock(clock.Now))
	users := repository.NewMemoryUserRepository()
	for username, roles := range map[string][]domain.Role{
		"alice": {domain.RoleUser},
		"root":  {domain.RoleUser, domain.RoleAdmin},
	} {
		if err := users.Create(context.Background(), &domain.User{Username: username, Email: username + "@example.com", Roles: roles}); err != nil {
			t.Fatalf("seed %s: %v", username, err)
		}
	}

	metrics := observability.NewMetrics()
	mw := NewAuthMiddleware(tokens, users, metrics, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	api := app.Group("/api", mw.Handle)
	api.Get("/me", func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(principal.User.Username)
	})
	api.Get("/admin", RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	return &middlewareFixture{app: app, tokens: tokens, clock: clock, metrics: metrics}
}

func (f *middlewareFixture) request(t *testing.T, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp.StatusCode
}

func (f *middlewareFixture) issue(t *testing.T, subject string) string {
	t.Helper()
	token, err := f.tokens.Issue(subject)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

func TestAuthMiddlewareAuthenticates(t *testing.T) {
	f := newMiddlewareFixture(t)

	if status := f.request(t, "/api/me", f.issue(t, "alice")); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := testutil.ToFloat64(f.metrics.TokenValidations().WithLabelValues("valid")); got != 1 {
		t.Fatalf("expected one valid validation recorded, got %v", got)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	f := newMiddlewareFixture(t)
	expired := f.issue(t, "alice")
	f.clock.Advance(2 * time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no cookie", token: ""},
		{name: "garbage", token: "garbage"},
		{name: "expired", token: expired},
		{name: "unknown user", token: f.issue(t, "mallory")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := f.request(t, "/api/me", tt.token); status != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", status)
			}
		})
	}

	if got := testutil.ToFloat64(f.metrics.TokenValidations().WithLabelValues("expired")); got != 1 {
		t.Fatalf("expected one expired validation recorded, got %v", got)
	}
}

func TestRequireRole(t *testing.T) {
	f := newMiddlewareFixture(t)

	if status := f.request(t, "/api/admin", f.issue(t, "alice")); status != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user, got %d", status)
	}
	if status := f.request(t, "/api/admin", f.issue(t, "root")); status != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", status)
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/", RequireRole(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
