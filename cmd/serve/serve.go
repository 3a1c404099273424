// Package serve runs the librarian HTTP API server.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/auth"
	"github.com/libreshelf/librarian/pkg/config"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/handlers"
	"github.com/libreshelf/librarian/pkg/logging"
	"github.com/libreshelf/librarian/pkg/metrics"
	"github.com/libreshelf/librarian/pkg/middleware"
	"github.com/libreshelf/librarian/pkg/repositories"
	"github.com/libreshelf/librarian/pkg/services"
	"github.com/libreshelf/librarian/pkg/services/load"
)

const shutdownTimeout = 15 * time.Second

// Command creates the serve command.
func Command(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Run the librarian HTTP API: inventory, circulation, bulk loads, and auth.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), version)
		},
	}
}

func run(ctx context.Context, version string) error {
	cfg, err := config.Load(version)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("load_policy", cfg.Load.Policy))

	// Connection errors can echo the DSN, so they are logged sanitized rather
	// than returned verbatim.
	if err := database.RunMigrations(cfg.Database.ConnectionString(), cfg.MigrationsPath, logger); err != nil {
		logger.Error("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
		return errors.New("failed to run migrations")
	}

	db, err := database.NewConnection(ctx, &database.Config{
		DSN:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Error("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
		return errors.New("failed to connect to database")
	}
	defer db.Close()

	m, err := metrics.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Repositories
	bookRepo := repositories.NewBookRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	teacherRepo := repositories.NewTeacherRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	userRepo := repositories.NewUserRepository(db)
	loadRunRepo := repositories.NewLoadRunRepository(db)

	// Auth
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	authService := auth.NewAuthService(userRepo, tokenManager, logger)
	authMiddleware := auth.NewMiddleware(authService, cfg.Auth.EnableVerification, logger)

	// Services
	bookService := services.NewBookService(bookRepo, categoryRepo, locationRepo, logger)
	teacherService := services.NewTeacherService(teacherRepo, logger)
	circulationService := services.NewCirculationService(db, bookRepo, teacherRepo, transactionRepo, m, logger)

	profiles, err := load.LoadProfiles(cfg.Load.ProfilesPath)
	if err != nil {
		return fmt.Errorf("failed to load source profiles: %w", err)
	}
	if err := load.SetDefault(profiles, cfg.Load.DefaultProfile); err != nil {
		return fmt.Errorf("failed to apply default profile: %w", err)
	}
	orchestrator := load.NewOrchestrator(db, bookRepo, categoryRepo, locationRepo,
		load.Policy(cfg.Load.Policy), cfg.Load.MaxRowErrors, logger)
	loadService := load.NewService(orchestrator, loadRunRepo, profiles, m, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(mux)
	handlers.NewBookHandler(bookService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTeacherHandler(teacherService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTransactionHandler(circulationService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewLoadHandler(loadService, cfg.Load.MaxUploadBytes, logger).RegisterRoutes(mux, authMiddleware)
	m.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger, m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
			logger.Info("Starting librarian with TLS",
				zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
			err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			logger.Info("Starting librarian",
				zap.String("addr", srv.Addr), zap.String("version", cfg.Version))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Shutting down", zap.String("reason", "context cancelled"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

