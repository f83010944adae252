package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localrivet/gomcp/server"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-mcp/internal/api/http"
	"github.com/i474232898/weather-mcp/internal/config"
	"github.com/i474232898/weather-mcp/internal/logging"
	"github.com/i474232898/weather-mcp/internal/render"
	"github.com/i474232898/weather-mcp/internal/scheduler"
	"github.com/i474232898/weather-mcp/internal/tools"
	"github.com/i474232898/weather-mcp/internal/weather"
	"github.com/i474232898/weather-mcp/internal/weather/providers"
)

const (
	serverName = "weather-mcp-server"
	version    = "1.0.0"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	keyErr := cfg.Validate()
	if keyErr != nil && cfg.Mode == config.ModeStdio {
		logger.Fatalw("refusing to start", "error", keyErr)
	}
	if keyErr != nil {
		logger.Warnw("tool calls will fail until the API key is configured", "error", keyErr)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewOpenWeatherProvider(httpClient, providers.OpenWeatherConfig{
		APIKey:  cfg.OpenWeatherAPIKey,
		BaseURL: cfg.OpenWeatherURL,
		GeoURL:  cfg.GeoURL,
		Breaker: providers.BreakerConfig{
			Name:                "openweather",
			ConsecutiveFailures: uint32(cfg.BreakerFailures),
			OpenTimeout:         cfg.BreakerTimeout,
		},
	})

	service := weather.NewService(provider,
		weather.WithCacheTTL(cfg.CacheTTL),
		weather.WithDefaults(cfg.DefaultUnits, cfg.DefaultLang),
		weather.WithLogger(logger),
	)
	toolset := tools.New(service, render.New(cfg.DefaultLang, cfg.DisplayTimezone), logger)

	// Scheduler that keeps configured cities cached.
	if keyErr == nil {
		sched := scheduler.New(cfg.WarmCities, cfg.WarmInterval, service, logger)
		if err := sched.Start(); err != nil {
			logger.Fatalw("failed to start scheduler", "error", err)
		}
		defer sched.Stop()
	}

	switch cfg.Mode {
	case config.ModeHTTP:
		serveHTTP(cfg, toolset, service, keyErr == nil, logger)
	default:
		serveStdio(toolset, logger)
	}
}

func serveStdio(toolset *tools.Toolset, logger *zap.SugaredLogger) {
	srv := server.NewServer(serverName)
	tools.RegisterMCP(srv, toolset)
	srv.AsStdio()

	logger.Infow("mcp server listening on stdio", "name", serverName, "version", version, "tools", toolset.Names())
	if err := srv.Run(); err != nil {
		logger.Errorw("mcp server stopped", "error", err)
	}
}

func serveHTTP(cfg *config.AppConfig, toolset *tools.Toolset, service *weather.Service, keyConfigured bool, logger *zap.SugaredLogger) {
	app := httpapi.NewApp(httpapi.Deps{
		Tools:         toolset,
		Service:       service,
		KeyConfigured: keyConfigured,
		Version:       version,
		Logger:        logger,
	})

	// Start server with graceful shutdown
	go func() {
		logger.Infow("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
}
