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

	"github.com/mantavyam/jacob-web/internal/auth"
	"github.com/mantavyam/jacob-web/internal/config"
	"github.com/mantavyam/jacob-web/internal/database"
	"github.com/mantavyam/jacob-web/internal/handlers"
	"github.com/mantavyam/jacob-web/internal/repositories"
	"github.com/mantavyam/jacob-web/internal/routes"
	"github.com/mantavyam/jacob-web/internal/services"
	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
	pkglogger "github.com/mantavyam/jacob-web/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("email_provider", cfg.Email.Provider))

	ctx := context.Background()

	// Initialize database
	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = db.MigratePool(migrateCtx)
	cancel()
	if err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Admin secret
	verifier, err := auth.NewSecretVerifier(cfg.Admin)
	if err != nil {
		logger.Error("invalid admin secret configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ipConfig := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Services
	complaintRepo := repositories.NewComplaintRepository(db)
	notifier := services.NewNotifier(ctx, cfg.Email, logger)
	complaintService := services.NewComplaintService(complaintRepo, notifier, logger)

	router := routes.NewRouter(cfg.Server, logger, routes.Dependencies{
		Complaints: handlers.NewComplaintHandler(complaintService),
		Admin:      handlers.NewAdminHandler(complaintService, auditLogger, ipConfig),
		Health:     handlers.NewHealthHandler(db, complaintService.EmailConfigured()),
		Guard: auth.AdminGuard{
			Verifier: verifier,
			Audit:    auditLogger,
			Timing:   auth.NewTimingDelay(auth.DefaultTimingConfig()),
			IPConfig: ipConfig,
		},
		Limits:   cfg.Limits,
		IPConfig: ipConfig,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server",
			slog.String("addr", server.Addr),
			slog.Bool("email_configured", notifier.Configured()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
