// Storefront widget proxy - serves pricing, customer context and product
// table data to BigCommerce storefront widgets.
// Designed for Cloud Run deployment; widget configuration lives in Postgres
// when DATABASE_URL is set.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-widgets/internal/bigcommerce"
	"storefront-widgets/internal/config"
	"storefront-widgets/internal/customer"
	"storefront-widgets/internal/handler"
	"storefront-widgets/internal/middleware"
	"storefront-widgets/internal/pricing"
	"storefront-widgets/internal/store"
	"storefront-widgets/internal/storefront"
	"storefront-widgets/internal/transport"
	"storefront-widgets/internal/widgets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Initialize structured logger
	logger := initLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("store_hash", cfg.StoreHash),
		slog.String("environment", cfg.Environment),
		slog.String("upstream_transport", cfg.UpstreamTransport),
		slog.Bool("database", cfg.Store.DatabaseURL != ""),
	)

	kind, err := transport.ParseKind(cfg.UpstreamTransport)
	if err != nil {
		return err
	}
	bc, err := bigcommerce.New(bigcommerce.Config{
		StoreHash:               cfg.StoreHash,
		AccessToken:             cfg.Store.AccessToken,
		ClientID:                cfg.Store.ClientID,
		BaseURL:                 cfg.Store.APIURL,
		Currency:                cfg.Store.Currency,
		CustomerTagsAttributeID: cfg.Store.CustomerTagsAttributeID,
		Transport:               kind,
	})
	if err != nil {
		return fmt.Errorf("creating BigCommerce client: %w", err)
	}

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	prices := pricing.NewResolver(bc, logger)
	svc := widgets.NewService(repo, bc, widgets.Options{
		StoreHash:       cfg.StoreHash,
		TemplateName:    cfg.Store.WidgetTemplateName,
		LoaderScriptURL: cfg.Store.LoaderScriptURL,
		ProxyBaseURL:    cfg.PublicURL,
		Pricer:          prices,
	}, logger)

	h := handler.New(
		prices,
		customer.NewResolver(bc, logger),
		svc,
		logger,
	)

	// Setup routes
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	if cfg.Store.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set, admin routes are unauthenticated")
	}

	// Apply middleware chain: recovery → request ID → logging → CORS → admin auth → widget context → handler
	// Recovery must be outermost to catch panics from logging middleware
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.AdminAuth("/api/admin/", cfg.Store.AdminToken, logger),
		storefront.Middleware(storefront.Options{
			StoreHash:        cfg.StoreHash,
			MinWidgetVersion: cfg.MinWidgetVersion,
		}, logger),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// openRepository returns the Postgres widget store when a database is
// configured, otherwise an in-memory store that does not survive restarts.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Repository, func(), error) {
	if cfg.Store.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, widget configuration is kept in memory")
		return store.NewMemoryRepository(), func() {}, nil
	}

	db, err := store.Open(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	repo := store.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("preparing database schema: %w", err)
	}
	return repo, func() { db.Close() }, nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
