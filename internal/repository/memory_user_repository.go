package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticketdesk/cookie-auth/internal/domain"
	apperrors "github.com/ticketdesk/cookie-auth/pkg/util/errorutil"
)

// MemoryUserRepository keeps accounts in process memory. It is used when no
// POSTGRES_DSN is configured and in tests. Lookups of unknown users return
// pgx.ErrNoRows so callers handle both backends alike.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byUsername map[string]string
	byEmail    map[string]string
}

// NewMemoryUserRepository returns an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[string]domain.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (s *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[user.Username]; taken {
		return apperrors.NewConflict("username is already taken", map[string]any{"field": "username"})
	}
	if _, taken := s.byEmail[user.Email]; taken {
		return apperrors.NewConflict("email is already in use", map[string]any{"field": "email"})
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	stored.Roles = append([]domain.Role(nil), user.Roles...)
	s.byID[user.ID] = stored
	s.byUsername[user.Username] = user.ID
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyOf(id)
}

func (s *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s.copyOf(id)
}

func (s *MemoryUserRepository) GetCredentials(ctx context.Context, username string) (*domain.User, error) {
	return s.GetByUsername(ctx, username)
}

func (s *MemoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byUsername[username]
	return ok, nil
}

func (s *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

// copyOf must be called with s.mu held.
func (s *MemoryUserRepository) copyOf(id string) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Roles = append([]domain.Role(nil), user.Roles...)
	return &user, nil
}
