package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/middleware"
)

// RouterConfig collects what NewRouter mounts. Auth and HTTPMetrics are optional.
type RouterConfig struct {
	Analytics   *AnalyticsHandler
	Health      *HealthHandler
	Auth        *middleware.APIKeyAuth
	HTTPMetrics *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

// NewRouter builds the gin engine. Health and metrics endpoints are never
// behind API key auth.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Handler())
	}

	r.GET("/health/live", cfg.Health.LivenessProbe)
	r.GET("/health/ready", cfg.Health.ReadinessProbe)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api/v1")
	if cfg.Auth != nil {
		api.Use(cfg.Auth.Handler())
	}

	h := cfg.Analytics
	channels := api.Group("/channels")
	channels.GET("/search", h.SearchChannels)
	channels.GET("/:channelId/analytics", h.GetChannelAnalytics)
	channels.GET("/:channelId/compare/:otherId", h.CompareChannels)
	channels.GET("/:channelId/featured", h.GetFeaturedChannels)
	channels.GET("/:channelId/history", h.GetSnapshotHistory)
	channels.POST("/:channelId/refresh", h.RefreshChannel)

	api.GET("/videos/:videoId/comments", h.GetVideoComments)
	api.GET("/quota", h.GetQuotaInfo)

	return r
}
