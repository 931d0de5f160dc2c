package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/cavos-labs/forma-app/docs"

	"github.com/cavos-labs/forma-app/internal/checkout"
	"github.com/cavos-labs/forma-app/internal/config"
	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/server"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"

	"github.com/redis/go-redis/v9"
)

// @title Forma Gateway API
// @version 1.0
// @description Web gateway for the Forma gym management platform.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey CookieAuth
// @in header
// @name Cookie
func main() {
	logger.Init()
	logger.Info("Starting Forma gateway")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis unavailable, remembered sessions will not survive restarts", "error", err)
	}
	pingCancel()

	sessions := session.NewManager(
		session.NewRedisStore(redisClient),
		session.NewMemoryStore(),
		cfg.SessionSecret,
	)

	client := upstream.New(cfg.UpstreamAPIURL, cfg.UpstreamAPIKey, cfg.ActivationAPIURL, cfg.ActivationAPIKey)
	stripe := checkout.NewStripeCreator(cfg.StripeSecretKey)

	srv, err := server.New(cfg, client, sessions, stripe)
	if err != nil {
		logger.Fatalf("Failed to build server: %v", err)
	}

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
