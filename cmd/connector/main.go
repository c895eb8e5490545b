// Command connector runs the terminal backend: it loads configuration from
// the environment, wires the widget registry, provider client and HTTP
// server together and serves until a termination signal arrives.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vianexus/terminal-connector/api"
	"github.com/vianexus/terminal-connector/internal/auth"
	"github.com/vianexus/terminal-connector/internal/cache"
	"github.com/vianexus/terminal-connector/internal/config"
	"github.com/vianexus/terminal-connector/internal/connector"
	"github.com/vianexus/terminal-connector/internal/registry"
	"github.com/vianexus/terminal-connector/internal/upstream"
	"github.com/vianexus/terminal-connector/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		// No logger yet when configuration is broken.
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	guard, err := auth.NewGuard(cfg.APIKey.Reveal())
	if err != nil {
		zapLogger.Fatal("Failed to create credential guard", zap.Error(err))
	}

	reg := registry.BuiltIn()

	provider, err := upstream.NewClient(upstream.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		Token:      cfg.Upstream.APIKey.Reveal(),
		Timeout:    cfg.Upstream.Timeout,
		MaxRetries: cfg.Upstream.MaxRetries,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create provider client", zap.Error(err))
	}

	service := connector.NewService(reg, provider, cache.New(cfg.CacheTTL), zapLogger)

	server, err := api.NewServer(service, guard, provider, api.Options{
		Origins:          cfg.Origins(),
		RateLimit:        cfg.RateLimit,
		AppsManifestPath: cfg.AppsManifestPath,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create API server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(),
	}

	go func() {
		zapLogger.Info("Starting connector",
			zap.String("addr", cfg.ListenAddr),
			zap.Int("widgets", reg.Len()),
			zap.String("environment", cfg.Environment),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Block until a termination signal, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down", zap.Duration("grace", cfg.ShutdownGrace))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Forced shutdown", zap.Error(err))
		os.Exit(1)
	}
	zapLogger.Info("Connector stopped")
}
