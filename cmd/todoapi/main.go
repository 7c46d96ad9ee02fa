package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/adapter/cache"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/bootstrap"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/config"
	httptransport "github.com/MoosaAfzal2/poetry-todo-api/internal/http"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/http/handler"
	httpmiddleware "github.com/MoosaAfzal2/poetry-todo-api/internal/http/middleware"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/jwt"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/password"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/repository"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/server"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/service"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newUserRepository,
			newTodoRepository,
			newRedisClient,
			newIdentityCache,
			newHasher,
			newTokenCodec,
			newRateLimiter,
			service.NewAuthService,
			service.NewTodoService,
			handler.NewHealthHandler,
			handler.NewAuthHandler,
			handler.NewTodoHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.EnsureSuperuser, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return repository.NewPostgresTodoRepo(pool)
}

// newRedisClient is optional: with no REDIS_ADDR configured the identity
// cache is disabled and every resolution goes straight to Postgres.
func newRedisClient(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (redis.UniversalClient, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	logger.Info("identity cache enabled", zap.String("addr", cfg.RedisAddr))
	return client, nil
}

func newIdentityCache(client redis.UniversalClient, cfg config.Config) *cache.IdentityCache {
	return cache.NewIdentityCache(client, cfg.IdentityCacheTTL)
}

func newHasher() *password.Hasher {
	return password.NewHasher()
}

func newTokenCodec(cfg config.Config) (*jwt.Codec, error) {
	return jwt.NewCodec(cfg.SecretKey, cfg.Algorithm, cfg.AccessTokenTTL)
}

func newRateLimiter(cfg config.Config) *httpmiddleware.RateLimiter {
	return httpmiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func newAuthMiddleware(authService *service.AuthService) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{AuthService: authService}
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
