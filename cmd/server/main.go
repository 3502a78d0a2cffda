// Customer support fulfillment server.
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/api"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/config"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/dialog"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/faq"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/middleware"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/notify"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/payment"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/recommend"
	"github.com/rihemtrigui/Customer-Support-Bot/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	resolver := recommend.NewResolver()
	if cfg.CatalogPath != "" {
		resolver, err = recommend.NewResolverFromFile(cfg.CatalogPath)
		if err != nil {
			slog.Error("Failed to load recommendation catalog", "error", err, "path", cfg.CatalogPath)
			os.Exit(1)
		}
		slog.Info("Recommendation catalog loaded", "path", cfg.CatalogPath)
	}

	validator := payment.NewAPIValidator(cfg.CardAPI.BaseURL, cfg.CardAPI.Host, cfg.CardAPI.Key, logger)
	mailer := notify.NewRelayMailer(cfg.Mail.RelayEndpoint, cfg.Mail.Sender)
	dispatcher := notify.NewMailDispatcher(mailer, cfg.Mail.BackoffUnit, logger)
	delegate := faq.NewHTTPDelegate(cfg.FAQEndpoint)

	engine := dialog.NewEngine(repo, validator, dispatcher, resolver, delegate, logger)

	// Initialize handlers.
	fulfillmentHandler := api.NewFulfillmentHandler(engine)
	healthHandler := api.NewHealthHandler(repo, cfg.Timeout.HealthCheck)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterHealth(r)
	fulfillmentHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Shutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
