package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/app"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/config"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/queue"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/service"
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

	if !cfg.Queue.Enabled {
		logger.Log.Info("Background refresh is disabled via configuration")
		return
	}

	if err := run(cfg); err != nil {
		logger.Log.Error("Worker exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := queue.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Queue.Concurrency,
		queue.NewRefreshHandler(a.Service, service.IsRetryable),
	)
	if err != nil {
		return fmt.Errorf("create task server: %w", err)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("start task server: %w", err)
	}

	logger.Log.Info("Worker started",
		zap.Int("concurrency", cfg.Queue.Concurrency),
		zap.Int("maxRetry", cfg.Queue.MaxRetry),
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdown

	logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	server.Stop()

	return nil
}
