package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/shelf/internal/app"
	"github.com/forgo/shelf/internal/config"
	"github.com/forgo/shelf/internal/jobs"
	"github.com/forgo/shelf/internal/logging"
	"github.com/forgo/shelf/internal/middleware"
	"github.com/forgo/shelf/internal/service"
	"github.com/forgo/shelf/internal/session"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Log, nil))

	ctx := context.Background()

	// Open the configured storage backend
	stores, err := app.OpenStores(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open storage",
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	defer func() { _ = stores.Close() }()

	// Initialize services
	sessions := session.NewStore(cfg.Session.TTL)

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:   stores.Users,
		Sessions:   sessions,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	catalogService := service.NewCatalogService(service.CatalogServiceConfig{
		BookRepo: stores.Books,
	})
	circulationService := service.NewCirculationService(service.CirculationServiceConfig{
		BookRepo: stores.Books,
		UserRepo: stores.Users,
	})

	// Seed default accounts
	if cfg.Seed.Enabled {
		seeder := service.NewSeederService(authService, stores.Users)
		if _, err := seeder.SeedUsers(ctx, service.DefaultSeedUsers(cfg.Seed.AdminPassword, cfg.Seed.GuestPassword)); err != nil {
			slog.Error("failed to seed users", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Start background jobs
	sweeper := jobs.NewSessionSweeper(authService, cfg.Session.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize login rate limiter
	loginLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Limit:  cfg.Auth.LoginRateLimit,
		Window: cfg.Auth.LoginRateWindow,
	})
	defer loginLimiter.Stop()

	wrapped := app.NewRouter(app.RouterConfig{
		Auth:        authService,
		Catalog:     catalogService,
		Circulation: circulationService,
		Stores:      stores,
		Cookie: middleware.Cookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		AllowedOrigins:      cfg.Server.AllowedOrigins,
		CatalogRequireAdmin: cfg.Auth.CatalogRequireAdmin,
		LoginLimiter:        loginLimiter,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("driver", cfg.Database.Driver),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
