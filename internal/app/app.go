// Package app wires configuration into the running components shared by the
// server and worker binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/cache"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/config"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/db"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/db/repository"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/events"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/quota"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/service"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/validation"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/youtube"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

// App holds the long-lived components. Cache and Publisher are nil when
// their integration is disabled or unreachable.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type App struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	Repo      *repository.Repository
	Quota     *quota.Manager
	YouTube   *youtube.Client
	Cache     *cache.Cache
	Publisher *events.Publisher
	Validator *validation.Validator
	Registry  *prometheus.Registry
	Service   *service.AnalyticsService
}

// New connects to Postgres, applies migrations and builds the analytics
// service. Redis and RabbitMQ failures are logged and the integration is
// left disabled; a database or YouTube client failure is fatal.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config:    cfg,
		Validator: validation.New(validation.DefaultMaxQueryLength),
		Registry:  prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := db.MigrateUp(cfg.Database.URL()); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	pool, err := db.NewPool(ctx, db.FromAppConfig(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.Pool = pool
	logger.Log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int32("maxConns", pool.Config().MaxConns),
	)

	a.Repo = repository.New(pool)
	a.Quota = quota.NewManager(a.Repo, cfg.YouTube.DailyQuota, cfg.YouTube.QuotaThreshold)

	var ytOpts []option.ClientOption
	if cfg.YouTube.Endpoint != "" {
		ytOpts = append(ytOpts, option.WithEndpoint(cfg.YouTube.Endpoint))
	}
	a.YouTube, err = youtube.NewClient(ctx, cfg.YouTube.APIKey, ytOpts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create youtube client: %w", err)
	}
	a.YouTube.SetQuotaRecorder(a.Quota)

	if cfg.Redis.Enabled {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Log.Warn("Redis unavailable, analytics caching disabled", zap.Error(err))
		} else {
			a.Cache = cache.New(rdb, cfg.Redis.AnalyticsTTL, cfg.Redis.SearchTTL)
			logger.Log.Info("Redis cache connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	if cfg.RabbitMQ.Enabled {
		publisher, err := events.NewPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("RabbitMQ unavailable, rating events will not be published", zap.Error(err))
		} else {
			a.Publisher = publisher
			logger.Log.Info("RabbitMQ publisher connected", zap.String("exchange", cfg.RabbitMQ.Exchange))
		}
	}

	deps := service.Dependencies{
		YouTube:   a.YouTube,
		Quota:     a.Quota,
		Snapshots: a.Repo,
		Validator: a.Validator,
		Metrics:   service.NewMetrics(a.Registry),
	}
	if a.Cache != nil {
		deps.Cache = a.Cache
	}
	if a.Publisher != nil {
		deps.Publisher = a.Publisher
	}

	a.Service = service.NewAnalyticsService(deps, service.Options{
		LatestVideoCount: cfg.YouTube.LatestVideoCount,
		SearchResults:    cfg.YouTube.SearchResults,
	})

	return a, nil
}

// CachePinger returns the cache for health checks, or nil when disabled.
func (a *App) CachePinger() interface{ Ping(context.Context) error } {
	if a.Cache == nil {
		return nil
	}
	return a.Cache
}

// Close releases every open connection.
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.Log.Error("Failed to close RabbitMQ publisher", zap.Error(err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			logger.Log.Error("Failed to close Redis client", zap.Error(err))
		}
	}
	db.Close(a.Pool)
}
