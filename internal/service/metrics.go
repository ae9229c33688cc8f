package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for analytics computation.
type Metrics struct {
	AnalyticsComputed *prometheus.CounterVec
	RatingScore       prometheus.Histogram
	YouTubeCalls      *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalyticsComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_analytics_computed_total",
				Help: "Total channel analytics computations, by grade.",
			},
			[]string{"rating"},
		),
		RatingScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "channel_analytics_rating_score",
				Help:    "Distribution of weighted channel scores.",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		YouTubeCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_analytics_youtube_calls_total",
				Help: "YouTube Data API calls, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "channel_analytics_cache_hits_total",
				Help: "Total analytics cache hits.",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "channel_analytics_cache_misses_total",
				Help: "Total analytics cache misses.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.AnalyticsComputed,
			m.RatingScore,
			m.YouTubeCalls,
			m.CacheHits,
			m.CacheMisses,
		)
	}

	return m
}

func (m *Metrics) observeCall(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.YouTubeCalls.WithLabelValues(operation, outcome).Inc()
}
