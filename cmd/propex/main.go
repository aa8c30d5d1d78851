package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/propex/propex/internal/config"
	"github.com/propex/propex/internal/engine"
	"github.com/propex/propex/internal/handler"
	"github.com/propex/propex/internal/service"
	"github.com/propex/propex/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// A .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Instantiate stores.
	ledger := store.NewLedger()
	holdings := store.NewHoldings()
	properties := store.NewProperties()
	orders := store.NewOrders()
	trades := store.NewTrades()
	watchlists := store.NewWatchlists()
	webhooks := store.NewWebhooks()

	// Seed the property catalog.
	if cfg.PropertiesFile != "" {
		n, err := properties.LoadFile(cfg.PropertiesFile)
		if err != nil {
			logger.Error("failed to load property catalog",
				slog.String("file", cfg.PropertiesFile),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("property catalog loaded",
			slog.String("file", cfg.PropertiesFile),
			slog.Int("properties", n))
	} else {
		logger.Warn("PROPERTIES_FILE not set, starting with an empty catalog")
	}

	// Engine.
	books := engine.NewBookManager()
	settler := engine.NewSettler(ledger, holdings, properties)
	matcher := engine.NewMatcher(books, ledger, holdings, orders, trades, settler)

	// Services.
	webhookSvc := service.NewWebhookService(webhooks, ledger, cfg.WebhookTimeout)
	deps := handler.RouterDeps{
		AccountSvc:   service.NewAccountService(ledger),
		OrderSvc:     service.NewOrderService(matcher, ledger, properties, orders, webhookSvc),
		PortfolioSvc: service.NewPortfolioService(settler, ledger, holdings, properties),
		PropertySvc:  service.NewPropertyService(properties, trades, books),
		WatchlistSvc: service.NewWatchlistService(watchlists, ledger, properties),
		WebhookSvc:   webhookSvc,
	}

	router := handler.NewRouter(deps, cfg.CORSOrigins, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
