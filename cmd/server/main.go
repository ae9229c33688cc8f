package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/app"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/config"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/handler"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/middleware"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/queue"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Log.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var refreshQueue handler.RefreshQueue
	if cfg.Queue.Enabled {
		client, err := queue.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Queue.MaxRetry)
		if err != nil {
			logger.Log.Warn("Failed to initialize queue client, background refresh disabled", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			refreshQueue = client
		}
	}

	var broker handler.BrokerHealth
	if a.Publisher != nil {
		broker = a.Publisher
	}

	var auth *middleware.APIKeyAuth
	if cfg.Auth.Enabled {
		auth = middleware.NewAPIKeyAuth(cfg.Auth.APIKeys)
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Analytics:   handler.NewAnalyticsHandler(a.Service, refreshQueue, a.Validator),
		Health:      handler.NewHealthHandler(a.Repo, a.CachePinger(), broker),
		Auth:        auth,
		HTTPMetrics: middleware.NewHTTPMetrics(a.Registry),
		Gatherer:    a.Registry,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      http.TimeoutHandler(router, cfg.Server.RequestTimeout, "request timed out"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.Bool("auth", cfg.Auth.Enabled),
			zap.Bool("queue", refreshQueue != nil),
		)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Log.Error("Failed to close server", zap.Error(closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Log.Info("Server stopped gracefully")
	}

	return nil
}
