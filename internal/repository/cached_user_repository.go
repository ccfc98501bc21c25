package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketdesk/cookie-auth/internal/domain"
)

const userCachePrefix = "cookie-auth:user:username:"

// CachedUserRepository serves GetByUsername from Redis and falls through to the
// wrapped repository on a miss. Redis failures are logged and bypassed. Cached
// entries carry no password hash; GetCredentials always reads the wrapped store.
type CachedUserRepository struct {
	next   UserRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserRepository wraps next with a read-through cache. A nil client or
// non-positive ttl returns next unchanged.
func NewCachedUserRepository(next UserRepository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) UserRepository {
	if client == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUserRepository{next: next, client: client, ttl: ttl, logger: logger.Named("user_cache")}
}

func (r *CachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.next.Create(ctx, user); err != nil {
		return err
	}
	// drop any stale entry left under a reused username
	if err := r.client.Del(ctx, cacheKey(user.Username)).Err(); err != nil {
		r.logger.Warn("cache invalidate failed", zap.String("username", user.Username), zap.Error(err))
	}
	return nil
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	key := cacheKey(username)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var user domain.User
		if jsonErr := json.Unmarshal(raw, &user); jsonErr == nil {
			return &user, nil
		}
		r.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		_ = r.client.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	user, err := r.next.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return user, nil
}

func (r *CachedUserRepository) GetCredentials(ctx context.Context, username string) (*domain.User, error) {
	return r.next.GetCredentials(ctx, username)
}

func (r *CachedUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.next.ExistsByUsername(ctx, username)
}

func (r *CachedUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.next.ExistsByEmail(ctx, email)
}

func cacheKey(username string) string {
	return userCachePrefix + username
}
