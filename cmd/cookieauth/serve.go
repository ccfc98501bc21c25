package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/ticketdesk/cookie-auth/internal/api/http"
	"github.com/ticketdesk/cookie-auth/internal/api/http/handlers"
	"github.com/ticketdesk/cookie-auth/internal/auth"
	"github.com/ticketdesk/cookie-auth/internal/config"
	"github.com/ticketdesk/cookie-auth/internal/events"
	"github.com/ticketdesk/cookie-auth/internal/observability"
	"github.com/ticketdesk/cookie-auth/internal/persistence"
	"github.com/ticketdesk/cookie-auth/internal/repository"
	"github.com/ticketdesk/cookie-auth/internal/service"
	"github.com/ticketdesk/cookie-auth/internal/worker"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		Expiration: cfg.Auth.TokenExpiration(),
		CookieName: cfg.Auth.JWTCookie,
	}, logger)
	if err != nil {
		logger.Error("invalid signing key configuration", zap.Error(err))
		return err
	}
	logger.Info("token service ready",
		zap.String("alg", tokens.Algorithm()),
		zap.Duration("expiration", cfg.Auth.TokenExpiration()),
		zap.String("cookie", tokens.CookieName()),
	)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var users repository.UserRepository
	if pool := pg.PoolHandle(); pool != nil {
		users = repository.NewUserRepository(pool)
	} else {
		logger.Warn("using in-memory user store; accounts are lost on restart")
		users = repository.NewMemoryUserRepository()
	}
	users = repository.NewCachedUserRepository(users, redis.Client, cfg.Redis.UserCacheTTL(), logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(dispatcher, logger)

	authService := service.NewAuthService(service.AuthDependencies{
		Users:      users,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		Events:     dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService, tokens),
		Content:        handlers.NewContentHandler(),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users, metrics, logger),
		Metrics:        metrics,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case <-waitForShutdown(ctx, logger):
	}

	return app.Shutdown()
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
			logger.Info("shutting down", zap.Error(ctx.Err()))
		}
	}()
	return done
}
