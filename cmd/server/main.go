package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ishagupta145/mcp-server/internal/adapters/exchange"
	httpAdapter "github.com/Ishagupta145/mcp-server/internal/adapters/http"
	"github.com/Ishagupta145/mcp-server/internal/cache"
	"github.com/Ishagupta145/mcp-server/internal/config"
	"github.com/Ishagupta145/mcp-server/internal/services"
)

func main() {
	// Initialize logger
	logger := initLogger()
	slog.SetDefault(logger)

	logger.Info("starting crypto market data service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Create root context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build application
	app := buildApplication(cfg, logger)

	// Start application components
	app.Start()

	// Wait for shutdown signal
	waitForShutdown(ctx, cancel, app, logger)
}

func initLogger() *slog.Logger {
	logLevel := os.Getenv("LOG_LEVEL")
	logFormat := os.Getenv("LOG_FORMAT")

	var level slog.Level
	switch logLevel {
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
	}

	var handler slog.Handler
	if logFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Application holds all components
type Application struct {
	httpServer *httpAdapter.Server
	logger     *slog.Logger
}

func buildApplication(cfg *config.Config, logger *slog.Logger) *Application {
	logger.Info("building application")

	// 1. Infrastructure Layer - Exchange Gateway
	gatewayOpts := []exchange.GatewayOption{
		exchange.WithTimeout(cfg.Exchange.Timeout),
		exchange.WithLogger(logger),
	}
	if cfg.Exchange.BinanceBaseURL != "" {
		gatewayOpts = append(gatewayOpts, exchange.WithClient(
			exchange.NewBinanceClient(
				exchange.WithBinanceBaseURL(cfg.Exchange.BinanceBaseURL),
				exchange.WithBinanceLogger(logger),
			)))
	}
	if cfg.Exchange.KrakenBaseURL != "" {
		gatewayOpts = append(gatewayOpts, exchange.WithClient(
			exchange.NewKrakenClient(
				exchange.WithKrakenBaseURL(cfg.Exchange.KrakenBaseURL),
				exchange.WithKrakenLogger(logger),
			)))
	}
	gateway := exchange.NewGateway(gatewayOpts...)

	// 2. Infrastructure Layer - Ticker Cache
	tickerCache := cache.New(cfg.Cache.TTL,
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithLogger(logger),
	)

	// 3. Service Layer
	marketService := services.NewMarketService(gateway, tickerCache, logger)

	// 4. Transport Layer - HTTP Server
	httpServer := httpAdapter.NewServer(
		cfg.Server,
		marketService,
		cfg.Exchange.Default,
		logger,
	)

	logger.Info("application built",
		"exchanges", gateway.Exchanges(),
		"cache_ttl", cfg.Cache.TTL.String(),
		"default_exchange", cfg.Exchange.Default,
	)

	return &Application{
		httpServer: httpServer,
		logger:     logger,
	}
}

func (a *Application) Start() {
	a.logger.Info("starting application components")

	// Start HTTP server in background (will block until shutdown)
	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http server error", "error", err)
		}
	}()

	a.logger.Info("application started",
		"http_addr", a.httpServer.Addr(),
	)
}

func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("failed to shutdown http server", "error", err)
	}

	a.logger.Info("application shutdown complete")
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, app *Application, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
		app.Shutdown()
	case <-ctx.Done():
		app.Shutdown()
	}
}
