package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// CookiePath scopes the session cookie to the API routes.
	CookiePath = "/api"
	// CookieMaxAge is fixed and deliberately not derived from the token expiry.
	CookieMaxAge = 24 * 60 * 60
)

// CookieJar is the read side of an inbound request's cookies. *fiber.Ctx satisfies it.
type CookieJar interface {
	Cookies(key string, defaultValue ...string) string
}

// CookieDirective describes a cookie mutation for the response.
type CookieDirective struct {
	Name     string
	Value    string
	Path     string
	MaxAge   int
	HTTPOnly bool
}

// Fiber converts the directive into a fiber cookie. fasthttp drops Max-Age when it
// is not positive, so a zero max-age is expressed as an epoch expiry instead.
func (d CookieDirective) Fiber() *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     d.Name,
		Value:    d.Value,
		Path:     d.Path,
		MaxAge:   d.MaxAge,
		HTTPOnly: d.HTTPOnly,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if d.MaxAge <= 0 {
		cookie.MaxAge = 0
		cookie.Expires = time.Unix(0, 0).UTC()
	}
	return cookie
}

// ExtractFromCookie returns the raw token stored under the configured cookie
// name. No validation is performed.
func (ts *TokenService) ExtractFromCookie(jar CookieJar) (string, bool) {
	if jar == nil {
		return "", false
	}
	value := jar.Cookies(ts.cookieName)
	if value == "" {
		return "", false
	}
	return value, true
}

// BuildSetCookie issues a token for subject and wraps it in a cookie directive.
func (ts *TokenService) BuildSetCookie(subject string) (CookieDirective, error) {
	token, err := ts.Issue(subject)
	if err != nil {
		return CookieDirective{}, err
	}
	return CookieDirective{
		Name:     ts.cookieName,
		Value:    token,
		Path:     CookiePath,
		MaxAge:   CookieMaxAge,
		HTTPOnly: true,
	}, nil
}

// BuildClearCookie returns a directive that expires the session cookie immediately.
func (ts *TokenService) BuildClearCookie() CookieDirective {
	return CookieDirective{
		Name:   ts.cookieName,
		Value:  "",
		Path:   CookiePath,
		MaxAge: 0,
	}
}
