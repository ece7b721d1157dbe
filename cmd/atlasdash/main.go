package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlasdash/atlasdash/internal/app"
	"github.com/atlasdash/atlasdash/internal/auth"
	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/customers"
	"github.com/atlasdash/atlasdash/internal/dashboard"
	"github.com/atlasdash/atlasdash/internal/invoices"
	"github.com/atlasdash/atlasdash/internal/observability"
	"github.com/atlasdash/atlasdash/internal/platform/cache"
	"github.com/atlasdash/atlasdash/internal/platform/db"
	"github.com/atlasdash/atlasdash/internal/posts"
	"github.com/atlasdash/atlasdash/internal/users"
	"github.com/atlasdash/atlasdash/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	authzRepo := authz.NewRepository(pool)
	resolver := authz.NewResolver(authzRepo, logger)

	var permissions authz.PermissionSource = resolver
	var invalidator authz.Invalidator
	if cfg.PermissionCacheTTL > 0 {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		cached := authz.NewCachedResolver(resolver, authzRepo, redisClient, cfg.PermissionCacheTTL, logger)
		permissions = cached
		invalidator = cached
	}

	checker := authz.NewChecker(permissions)
	guard := authz.Middleware{Checker: checker, Logger: logger, Observer: metrics}
	authzService := authz.NewService(authzRepo, invalidator)

	issuer := auth.NewIssuer(cfg.AuthTokenSecret, cfg.AuthTokenTTL)
	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, issuer, permissions, cfg.IsProduction())

	mailClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	usersService := users.NewService(users.NewRepository(pool), mailClient, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("jobs inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Authenticator:    auth.Authenticator{Issuer: issuer},
		AuthHandler:      authHandler,
		AuthzHandler:     authz.NewHandler(logger, authzService, guard),
		UsersHandler:     users.NewHandler(logger, usersService, authzService, guard),
		CustomersHandler: customers.NewHandler(logger, customers.NewRepository(pool), guard),
		InvoicesHandler:  invoices.NewHandler(logger, invoices.NewRepository(pool), guard),
		PostsHandler:     posts.NewHandler(logger, posts.NewRepository(pool), guard),
		DashboardHandler: dashboard.NewHandler(logger, dashboard.NewService(pool), guard),
		JobsHandler:      jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		os.Exit(1)
	}
}
