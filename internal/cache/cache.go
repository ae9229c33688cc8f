// Package cache is a Redis cache-aside layer for channel analytics and search results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

// Default TTLs used when the configured value is zero.
const (
	DefaultAnalyticsTTL = 15 * time.Minute
	DefaultSearchTTL    = time.Hour
)

// Cache stores rendered analytics payloads. A Cache with a nil client is
// disabled: reads miss and writes are dropped.
type Cache struct {
	rdb          *redis.Client
	analyticsTTL time.Duration
	searchTTL    time.Duration
}

// New wraps rdb. rdb may be nil.
func New(rdb *redis.Client, analyticsTTL, searchTTL time.Duration) *Cache {
	if analyticsTTL <= 0 {
		analyticsTTL = DefaultAnalyticsTTL
	}
	if searchTTL <= 0 {
		searchTTL = DefaultSearchTTL
	}
	return &Cache{rdb: rdb, analyticsTTL: analyticsTTL, searchTTL: searchTTL}
}

// Connect opens a Redis client for addr, which is either host:port or a
// redis:// / rediss:// URL, and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Client returns the underlying Redis client. May be nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// GetAnalytics returns the cached analytics for a channel and whether it was found.
func (c *Cache) GetAnalytics(ctx context.Context, channelID string) (*models.ChannelAnalytics, bool, error) {
	var out models.ChannelAnalytics
	ok, err := c.get(ctx, AnalyticsKey(channelID), &out)
	if !ok || err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

// SetAnalytics caches analytics for a channel.
func (c *Cache) SetAnalytics(ctx context.Context, channelID string, a *models.ChannelAnalytics) error {
	return c.set(ctx, AnalyticsKey(channelID), a, c.analyticsTTL)
}

// InvalidateAnalytics drops the cached analytics for a channel.
func (c *Cache) InvalidateAnalytics(ctx context.Context, channelID string) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Del(ctx, AnalyticsKey(channelID)).Err()
}

// GetSearch returns cached search results for query and whether they were found.
func (c *Cache) GetSearch(ctx context.Context, query string) ([]models.ChannelSearchResult, bool, error) {
	var out []models.ChannelSearchResult
	ok, err := c.get(ctx, SearchKey(query), &out)
	if !ok || err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// SetSearch caches search results for query.
func (c *Cache) SetSearch(ctx context.Context, query string, results []models.ChannelSearchResult) error {
	return c.set(ctx, SearchKey(query), results, c.searchTTL)
}

// Ping checks the Redis connection. A disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close shuts down the Redis connection.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// a corrupt entry behaves like a miss and is overwritten on the next set
		logger.Log.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false, nil
	}

	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// AnalyticsKey is the Redis key for a channel's analytics.
func AnalyticsKey(channelID string) string {
	return "analytics:" + channelID
}

// SearchKey is the Redis key for a search query. Queries differing only in
// case or surrounding whitespace share a key.
func SearchKey(query string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(query))
}
