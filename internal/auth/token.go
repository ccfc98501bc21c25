package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// MinKeyBytes is the smallest HMAC key accepted (256 bits).
const MinKeyBytes = 32

var (
	// ErrWeakKey is returned when the decoded secret is shorter than MinKeyBytes.
	ErrWeakKey = errors.New("signing key must be at least 256 bits")

	errUnexpectedMethod = errors.New("unexpected signing method")
)

// TokenConfig holds the values the service needs from startup configuration.
type TokenConfig struct {
	// Secret is the base64 (standard alphabet) encoded HMAC key.
	Secret     string
	Expiration time.Duration
	CookieName string
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// TokenService issues and verifies session tokens and bridges them to cookies.
// It holds no mutable state after construction and is safe for concurrent use.
type TokenService struct {
	key        []byte
	method     *jwt.SigningMethodHMAC
	expiration time.Duration
	cookieName string
	logger     *zap.Logger
	now        func() time.Time
}

// NewTokenService decodes the signing key and builds the service.
func NewTokenService(cfg TokenConfig, logger *zap.Logger, opts ...TokenOption) (*TokenService, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	if len(key) < MinKeyBytes {
		return nil, ErrWeakKey
	}
	if cfg.Expiration <= 0 {
		return nil, errors.New("token expiration must be positive")
	}
	if cfg.CookieName == "" {
		return nil, errors.New("cookie name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ts := &TokenService{
		key:        key,
		method:     methodForKey(key),
		expiration: cfg.Expiration,
		cookieName: cfg.CookieName,
		logger:     logger.Named("tokens"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

// methodForKey picks the strongest HMAC variant the key length supports.
func methodForKey(key []byte) *jwt.SigningMethodHMAC {
	switch bits := len(key) * 8; {
	case bits >= 512:
		return jwt.SigningMethodHS512
	case bits >= 384:
		return jwt.SigningMethodHS384
	default:
		return jwt.SigningMethodHS256
	}
}

// Algorithm reports the JWS alg header value used for issued tokens.
func (ts *TokenService) Algorithm() string {
	return ts.method.Alg()
}

// CookieName returns the cookie the token travels in.
func (ts *TokenService) CookieName() string {
	return ts.cookieName
}

// Issue signs a token for subject that expires after the configured duration.
func (ts *TokenService) Issue(subject string) (string, error) {
	now := ts.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
	}

	signed, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry. It never returns an error: failures are
// logged with their kind and reported through the result.
func (ts *TokenService) Validate(token string) ValidationResult {
	if strings.TrimSpace(token) == "" {
		ts.logFailure(ValidationInvalidClaims, errors.New("token string is empty"))
		return ValidationInvalidClaims
	}

	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, ts.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(ts.now),
	)
	result := classify(err)
	if result != ValidationValid {
		ts.logFailure(result, err)
	}
	return result
}

// IsValid reports whether token is correctly signed and unexpired.
func (ts *TokenService) IsValid(token string) bool {
	return ts.Validate(token) == ValidationValid
}

// ExtractSubject returns the sub claim of a signed token. Claims such as expiry
// are not re-checked; call Validate first.
func (ts *TokenService) ExtractSubject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, ts.keyFunc,
		jwt.WithoutClaimsValidation(),
		jwt.WithStrictDecoding(),
	); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (ts *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != ts.method {
		return nil, fmt.Errorf("%w: %s", errUnexpectedMethod, token.Method.Alg())
	}
	return ts.key, nil
}

func (ts *TokenService) logFailure(result ValidationResult, err error) {
	ts.logger.Warn("token rejected", zap.Stringer("reason", result), zap.Error(err))
}

// classify maps golang-jwt errors onto validation results. Order matters:
// an expired token is also reported as ErrTokenInvalidClaims.
func classify(err error) ValidationResult {
	switch {
	case err == nil:
		return ValidationValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ValidationMalformed
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ValidationUnsupported
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ValidationInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ValidationExpired
	default:
		return ValidationInvalidClaims
	}
}
