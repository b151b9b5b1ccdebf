package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brinda301/sessiongate/internal/adapter/httpserver"
	"github.com/Brinda301/sessiongate/internal/adapter/metrics"
	"github.com/Brinda301/sessiongate/internal/adapter/postgres"
	"github.com/Brinda301/sessiongate/internal/adapter/redis"
	"github.com/Brinda301/sessiongate/internal/app"
	"github.com/Brinda301/sessiongate/internal/platform/config"
	"github.com/Brinda301/sessiongate/internal/platform/logging"
	"github.com/Brinda301/sessiongate/internal/platform/retry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// startupRetryPolicy covers dependencies that may come up after us, for
// example when the whole stack starts from one compose file.
var startupRetryPolicy = retry.Policy{
	MaxAttempts:    5,
	InitialBackoff: time.Second,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Dependency not ready, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	},
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := retry.Do(ctx, startupRetryPolicy, retry.Always, func() (*pgxpool.Pool, error) {
		return postgres.Connect(ctx, cfg.DatabaseURL)
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := retry.DoVoid(ctx, startupRetryPolicy, retry.Always, func() error {
		return client.Ping(ctx)
	}); err != nil {
		slog.Error("Failed to reach Redis", "error", err)
		os.Exit(1)
	}

	return client
}

func healthChecks(pool *pgxpool.Pool, redisClient *redis.Client) []httpserver.HealthCheck {
	return []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: redisClient.Ping},
	}
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	users := postgres.NewUserRepo(pool)
	tokens := redis.NewTokenStore(redisClient.Underlying(), cfg.TokenTTL)

	appSvc := app.NewService(users, tokens)

	registry := metrics.NewRegistry()
	srv := httpserver.NewServer(cfg, appSvc, registry, healthChecks(pool, redisClient))

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
