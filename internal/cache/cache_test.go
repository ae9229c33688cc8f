package cache

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/metrics"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "analytics:UCabc", AnalyticsKey("UCabc"))
	assert.Equal(t, "search:go tips", SearchKey("  Go Tips "))
}

func TestNew_DefaultTTLs(t *testing.T) {
	c := New(nil, 0, -time.Second)
	assert.Equal(t, DefaultAnalyticsTTL, c.analyticsTTL)
	assert.Equal(t, DefaultSearchTTL, c.searchTTL)
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c := New(nil, time.Minute, time.Minute)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.Nil(t, c.Client())

	require.NoError(t, c.SetAnalytics(ctx, "UCabc", &models.ChannelAnalytics{}))
	got, ok, err := c.GetAnalytics(ctx, "UCabc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, c.SetSearch(ctx, "go", []models.ChannelSearchResult{{ChannelID: "UCabc"}}))
	results, ok, err := c.GetSearch(ctx, "go")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, results)

	assert.NoError(t, c.InvalidateAnalytics(ctx, "UCabc"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
	assert.Nil(t, c.Client())
}

func TestAnalyticsRoundTrip_KeepsNonFiniteMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := Connect(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	c := New(rdb, time.Minute, time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	fresh := &models.ChannelAnalytics{
		Channel: models.ChannelSummary{ID: "UCabc"},
		ChannelMetrics: models.NewChannelMetricsDTO(metrics.ChannelMetrics{
			SubscriberConversionRate:    metrics.Float(math.NaN()),
			ContentSubscriberEfficiency: metrics.Float(12),
		}),
	}
	require.NoError(t, c.SetAnalytics(ctx, "UCabc", fresh))

	cached, ok, err := c.GetAnalytics(ctx, "UCabc")
	require.NoError(t, err)
	require.True(t, ok)

	want, err := json.Marshal(fresh)
	require.NoError(t, err)
	got, err := json.Marshal(cached)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	require.NotNil(t, cached.ChannelMetrics.SubscriberConversionRate)
	assert.Nil(t, cached.ChannelMetrics.ChannelEfficiencyIndex)
}
