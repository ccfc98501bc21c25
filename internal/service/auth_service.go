package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ticketdesk/cookie-auth/internal/auth"
	"github.com/ticketdesk/cookie-auth/internal/domain"
	"github.com/ticketdesk/cookie-auth/internal/events"
	"github.com/ticketdesk/cookie-auth/internal/repository"
	apperrors "github.com/ticketdesk/cookie-auth/pkg/util/errorutil"
)

// comparePassword is swapped in tests to observe which hash sign-in checks.
var comparePassword = auth.ComparePassword

// decoyPassword is hashed once per service so unknown usernames cost a bcrypt
// comparison like known ones.
const decoyPassword = "cookie-auth-decoy-password"

// AuthService coordinates sign-up, sign-in and session cookies.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	bcryptCost int
	events     events.Dispatcher
	logger     *zap.Logger

	decoyOnce sync.Once
	decoyHash string
}

// AuthDependencies bundles what the service needs.
type AuthDependencies struct {
	Users      repository.UserRepository
	Tokens     *auth.TokenService
	BcryptCost int
	// Events is optional; without it nothing is published.
	Events events.Dispatcher
	Logger *zap.Logger
}

// SignUpInput is the validated request to create an account.
type SignUpInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.Users,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		events:     deps.Events,
		logger:     logger.Named("auth"),
	}
}

// SignUp creates an account. Without requested roles the user gets ROLE_USER.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("username is already taken", map[string]any{"field": "username"})
	}
	taken, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("email is already in use", map[string]any{"field": "email"})
	}

	roles, err := parseRoles(in.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("user_id", user.ID))
	s.publish(ctx, events.EventUserRegistered, user.Username, map[string]string{"user_id": user.ID})
	return user, nil
}

// SignIn checks credentials and returns the cookie carrying a fresh session token.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*domain.User, auth.CookieDirective, error) {
	user, err := s.users.GetCredentials(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			_ = comparePassword(s.decoy(), password)
			s.publish(ctx, events.EventSignInFailed, username, map[string]string{"reason": "unknown_user"})
			return nil, auth.CookieDirective{}, apperrors.NewUnauthorized("bad credentials")
		}
		return nil, auth.CookieDirective{}, err
	}
	if err := comparePassword(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.EventSignInFailed, username, map[string]string{"reason": "bad_password"})
		return nil, auth.CookieDirective{}, apperrors.NewUnauthorized("bad credentials")
	}

	cookie, err := s.tokens.BuildSetCookie(user.Username)
	if err != nil {
		return nil, auth.CookieDirective{}, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventUserSignedIn, user.Username, nil)
	return user, cookie, nil
}

// SignOut returns the directive that removes the session cookie. The current
// token, if any, is only used to attribute the sign-out event.
func (s *AuthService) SignOut(ctx context.Context, token string) auth.CookieDirective {
	subject := ""
	if token != "" && s.tokens.IsValid(token) {
		subject, _ = s.tokens.ExtractSubject(token)
	}
	s.publish(ctx, events.EventUserSignedOut, subject, nil)
	return s.tokens.BuildClearCookie()
}

// CurrentUser loads the account a session subject refers to.
func (s *AuthService) CurrentUser(ctx context.Context, subject string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, subject)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// decoy returns a hash at the configured cost, built on first use.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := auth.HashPassword(decoyPassword, s.bcryptCost)
		if err != nil {
			s.logger.Error("decoy hash unavailable", zap.Error(err))
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, attrs map[string]string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, events.NewEvent(eventType, subject, attrs))
}

func parseRoles(raw []string) ([]domain.Role, error) {
	if len(raw) == 0 {
		return []domain.Role{domain.RoleUser}, nil
	}
	seen := make(map[domain.Role]struct{}, len(raw))
	roles := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		role, ok := domain.ParseRole(r)
		if !ok {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": r})
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles, nil
}
