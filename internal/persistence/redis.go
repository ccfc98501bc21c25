package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketdesk/cookie-auth/internal/config"
)

// startupPingTimeout bounds the first reachability check so a missing cache
// never delays boot.
const startupPingTimeout = 2 * time.Second

// Redis holds the client behind the user cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the user-cache client. An unreachable server is logged, not
// fatal: lookups fall through to the account store until it comes back.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	fields := []zap.Field{
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Duration("user_ttl", cfg.UserCacheTTL()),
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("user cache unreachable; serving from account store", append(fields, zap.Error(err))...)
	} else {
		logger.Info("user cache ready", fields...)
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping is used by /health/ready.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("user cache not configured")
	}
	return r.Client.Ping(ctx).Err()
}
