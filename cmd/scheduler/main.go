package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/config"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/db"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/db/repository"
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

	if !cfg.Queue.Enabled {
		logger.Log.Info("Background refresh is disabled via configuration, scheduler not started")
		return
	}

	if err := run(cfg); err != nil {
		logger.Log.Error("Scheduler exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	pool, err := db.NewPool(ctx, db.FromAppConfig(cfg.Database))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close(pool)

	client, err := queue.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Queue.MaxRetry)
	if err != nil {
		return fmt.Errorf("create queue client: %w", err)
	}
	defer func() { _ = client.Close() }()

	scheduler := &RefreshScheduler{
		channels:   repository.New(pool),
		queue:      client,
		staleAfter: cfg.Schedule.StaleAfter,
		batchSize:  cfg.Schedule.BatchSize,
		now:        time.Now,
	}

	logger.Log.Info("Refresh scheduler starting",
		zap.Duration("interval", cfg.Schedule.Interval),
		zap.Duration("staleAfter", cfg.Schedule.StaleAfter),
		zap.Int("batchSize", cfg.Schedule.BatchSize),
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Schedule.Interval)
	defer ticker.Stop()

	if err := scheduler.EnqueueStale(ctx); err != nil {
		logger.Log.Error("Initial refresh pass failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := scheduler.EnqueueStale(ctx); err != nil {
				logger.Log.Error("Scheduled refresh pass failed", zap.Error(err))
			}
		case sig := <-shutdown:
			logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// StaleChannelLister finds channels whose newest snapshot is older than a cutoff.
type StaleChannelLister interface {
	ListStaleChannels(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// RefreshQueue schedules a background recomputation for one channel.
type RefreshQueue interface {
	EnqueueChannelRefresh(ctx context.Context, channelID string) (string, error)
}

// RefreshScheduler re-rates previously analyzed channels so their snapshot
// history keeps growing.
type RefreshScheduler struct {
	channels   StaleChannelLister
	queue      RefreshQueue
	staleAfter time.Duration
	batchSize  int
	now        func() time.Time
}

// EnqueueStale enqueues a refresh for every stale channel. Individual enqueue
// failures are logged and counted; only the lookup failing is an error.
func (s *RefreshScheduler) EnqueueStale(ctx context.Context) error {
	cutoff := s.now().Add(-s.staleAfter)

	ids, err := s.channels.ListStaleChannels(ctx, cutoff, s.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale channels: %w", err)
	}

	if len(ids) == 0 {
		logger.Log.Info("No channels need refreshing")
		return nil
	}

	var queued, pending, failed int
	for _, id := range ids {
		_, err := s.queue.EnqueueChannelRefresh(ctx, id)
		switch {
		case errors.Is(err, queue.ErrRefreshPending):
			pending++
		case err != nil:
			logger.Log.Error("Failed to enqueue channel refresh",
				zap.String("channelId", id),
				zap.Error(err),
			)
			failed++
		default:
			queued++
		}
	}

	logger.Log.Info("Refresh pass completed",
		zap.Int("total", len(ids)),
		zap.Int("queued", queued),
		zap.Int("pending", pending),
		zap.Int("failed", failed),
	)

	return nil
}
