// Package service orchestrates YouTube fetches, metric computation, caching and persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/metrics"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/validation"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/youtube"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

// Chart sizes for the dashboard series.
const (
	TopVideosCount     = 10
	TimelineVideoCount = 15
	MaxHistoryLimit    = 100
)

// Quota units spent by each flow: channels.list, activities.list and
// videos.list for analytics, search.list for search.
const (
	analyticsQuotaCost = 3
	searchQuotaCost    = 100
	lookupQuotaCost    = 1
)

// YouTubeClient is the subset of the YouTube Data API client the service uses.
type YouTubeClient interface {
	SearchChannels(ctx context.Context, query string, maxResults int64) ([]models.ChannelSearchResult, error)
	GetChannel(ctx context.Context, channelID string) (*youtube.Channel, error)
	GetLatestVideos(ctx context.Context, channelID string, count int64) ([]metrics.VideoRecord, error)
	GetVideoComments(ctx context.Context, videoID string, maxResults int64, order string) ([]models.Comment, error)
	GetFeaturedChannels(ctx context.Context, channelID string) ([]string, error)
}

// QuotaChecker guards calls against the daily quota.
type QuotaChecker interface {
	CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, *models.QuotaInfo, error)
	GetQuotaInfo(ctx context.Context) (*models.QuotaInfo, error)
}

// SnapshotStore persists channel ratings.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s *models.ChannelSnapshot) error
	ListSnapshots(ctx context.Context, channelID string, limit int) ([]*models.ChannelSnapshot, error)
}

// AnalyticsCache is a cache-aside store for rendered payloads.
type AnalyticsCache interface {
	GetAnalytics(ctx context.Context, channelID string) (*models.ChannelAnalytics, bool, error)
	SetAnalytics(ctx context.Context, channelID string, a *models.ChannelAnalytics) error
	InvalidateAnalytics(ctx context.Context, channelID string) error
	GetSearch(ctx context.Context, query string) ([]models.ChannelSearchResult, bool, error)
	SetSearch(ctx context.Context, query string, results []models.ChannelSearchResult) error
}

// EventPublisher announces computed ratings.
type EventPublisher interface {
	PublishRatingComputed(ctx context.Context, event *models.RatingComputedEvent) error
}

// Dependencies wires the service. Only YouTube is required; a nil Quota,
// Snapshots, Cache or Publisher disables that step.
type Dependencies struct {
	YouTube   YouTubeClient
	Quota     QuotaChecker
	Snapshots SnapshotStore
	Cache     AnalyticsCache
	Publisher EventPublisher
	Validator *validation.Validator
	Metrics   *Metrics
}

// Options tunes how much data each request pulls.
type Options struct {
	LatestVideoCount int64
	SearchResults    int64
}

// AnalyticsService computes and serves channel analytics.
type AnalyticsService struct {
	youtube   YouTubeClient
	quota     QuotaChecker
	snapshots SnapshotStore
	cache     AnalyticsCache
	publisher EventPublisher
	validator *validation.Validator
	metrics   *Metrics
	opts      Options
	now       func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(deps Dependencies, opts Options) *AnalyticsService {
	if deps.Validator == nil {
		deps.Validator = validation.New(0)
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if opts.LatestVideoCount <= 0 {
		opts.LatestVideoCount = youtube.DefaultActivityResults
	}
	if opts.SearchResults <= 0 {
		opts.SearchResults = youtube.DefaultSearchResults
	}

	return &AnalyticsService{
		youtube:   deps.YouTube,
		quota:     deps.Quota,
		snapshots: deps.Snapshots,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		opts:      opts,
		now:       time.Now,
	}
}

// GetChannelAnalytics returns analytics for a channel, serving a cached copy when present.
func (s *AnalyticsService) GetChannelAnalytics(ctx context.Context, channelID string) (*models.ChannelAnalytics, error) {
	if err := s.validator.ValidateChannelID(channelID); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetAnalytics(ctx, channelID)
		if err != nil {
			logger.Log.Warn("Analytics cache lookup failed", zap.String("channelId", channelID), zap.Error(err))
		}
		if ok {
			s.metrics.CacheHits.Inc()
			return cached, nil
		}
		s.metrics.CacheMisses.Inc()
	}

	return s.computeAnalytics(ctx, channelID)
}

// RefreshChannel drops any cached analytics and recomputes them.
func (s *AnalyticsService) RefreshChannel(ctx context.Context, channelID string) (*models.ChannelAnalytics, error) {
	if err := s.validator.ValidateChannelID(channelID); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateAnalytics(ctx, channelID); err != nil {
			logger.Log.Warn("Failed to invalidate cached analytics", zap.String("channelId", channelID), zap.Error(err))
		}
	}

	return s.computeAnalytics(ctx, channelID)
}

func (s *AnalyticsService) computeAnalytics(ctx context.Context, channelID string) (*models.ChannelAnalytics, error) {
	// Step 1: Check quota
	if err := s.requireQuota(ctx, analyticsQuotaCost); err != nil {
		return nil, err
	}

	// Step 2: Fetch channel and latest uploads
	ch, err := s.youtube.GetChannel(ctx, channelID)
	s.metrics.observeCall("channels.list", err)
	if err != nil {
		return nil, translateError(err, "channel", channelID, "failed to fetch channel")
	}

	videos, err := s.youtube.GetLatestVideos(ctx, channelID, s.opts.LatestVideoCount)
	s.metrics.observeCall("videos.latest", err)
	if err != nil {
		return nil, translateError(err, "channel", channelID, "failed to fetch latest videos")
	}

	// Step 3: Compute everything against one evaluation time
	analytics, channelMetrics := buildAnalytics(ch, videos, s.now().UTC())

	s.metrics.AnalyticsComputed.WithLabelValues(analytics.Rating.Rating).Inc()
	s.metrics.RatingScore.Observe(float64(analytics.Rating.Score))

	logger.Log.Info("Channel analytics computed",
		zap.String("channelId", channelID),
		zap.Int("videos", len(videos)),
		zap.String("rating", analytics.Rating.Rating),
		zap.Float64("score", float64(analytics.Rating.Score)),
	)

	// Step 4: Cache, persist and publish; none of these fail the request
	s.afterCompute(ctx, ch, channelMetrics, analytics)

	return analytics, nil
}

func (s *AnalyticsService) afterCompute(ctx context.Context, ch *youtube.Channel, m metrics.ChannelMetrics, analytics *models.ChannelAnalytics) {
	if s.cache != nil {
		if err := s.cache.SetAnalytics(ctx, ch.ID, analytics); err != nil {
			logger.Log.Warn("Failed to cache analytics", zap.String("channelId", ch.ID), zap.Error(err))
		}
	}

	if s.snapshots != nil {
		snapshot := &models.ChannelSnapshot{
			ChannelID:       ch.ID,
			ViewCount:       ch.Record.ViewCount,
			SubscriberCount: ch.Record.SubscriberCount,
			VideoCount:      ch.Record.VideoCount,
			Metrics:         m,
			Score:           float64(analytics.Rating.Score),
			Rating:          analytics.Rating.Rating,
			ComputedAt:      analytics.ComputedAt,
		}
		if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
			logger.Log.Error("Failed to persist channel snapshot", zap.String("channelId", ch.ID), zap.Error(err))
		}
	}

	if s.publisher != nil {
		event := &models.RatingComputedEvent{
			EventID:    uuid.New(),
			ChannelID:  ch.ID,
			Rating:     analytics.Rating.Rating,
			Score:      analytics.Rating.Score,
			ComputedAt: analytics.ComputedAt,
		}
		if err := s.publisher.PublishRatingComputed(ctx, event); err != nil {
			logger.Log.Error("Failed to publish rating event",
				zap.String("channelId", ch.ID),
				zap.String("eventId", event.EventID.String()),
				zap.Error(err),
			)
		}
	}
}

// BuildAnalytics computes the full analytics payload for a fetched channel.
// Every age-dependent value is evaluated at now.
func BuildAnalytics(ch *youtube.Channel, videos []metrics.VideoRecord, now time.Time) *models.ChannelAnalytics {
	a, _ := buildAnalytics(ch, videos, now)
	return a
}

func buildAnalytics(ch *youtube.Channel, videos []metrics.VideoRecord, now time.Time) (*models.ChannelAnalytics, metrics.ChannelMetrics) {
	channelMetrics := metrics.ComputeChannelMetrics(ch.Record, videos, now)

	videoAnalytics := make([]models.VideoAnalytics, 0, len(videos))
	for _, v := range videos {
		videoAnalytics = append(videoAnalytics, models.VideoAnalytics{
			Video:   v,
			Metrics: models.NewVideoMetricsDTO(metrics.ComputeVideoMetrics(v, ch.Record, now)),
		})
	}

	timeline := metrics.EngagementTimeline(videos, TimelineVideoCount)
	timelineDTO := make([]models.TimelinePointDTO, 0, len(timeline))
	for _, p := range timeline {
		timelineDTO = append(timelineDTO, models.TimelinePointDTO{
			VideoID:         p.VideoID,
			PublishedAt:     p.PublishedAt,
			Views:           p.Views,
			Likes:           p.Likes,
			Comments:        p.Comments,
			EngagementRatio: models.Number(p.EngagementRatio),
		})
	}

	return &models.ChannelAnalytics{
		Channel:        channelSummary(ch),
		ChannelMetrics: models.NewChannelMetricsDTO(channelMetrics),
		Rating:         models.NewRatingDTO(metrics.Rate(channelMetrics)),
		Videos:         videoAnalytics,
		Charts: models.Charts{
			TopVideosByViews:      videoIDs(metrics.TopVideosByViews(videos, TopVideosCount)),
			TopVideosByEngagement: videoIDs(metrics.TopVideosByEngagement(videos, TopVideosCount)),
			EngagementTimeline:    timelineDTO,
			CategoryDistribution:  metrics.CategoryDistribution(videos),
		},
		ComputedAt: now,
	}, channelMetrics
}

// SearchChannels finds channels matching query.
func (s *AnalyticsService) SearchChannels(ctx context.Context, query string) ([]models.ChannelSearchResult, error) {
	q, err := s.validator.ValidateSearchQuery(query)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetSearch(ctx, q)
		if err != nil {
			logger.Log.Warn("Search cache lookup failed", zap.String("query", q), zap.Error(err))
		}
		if ok {
			s.metrics.CacheHits.Inc()
			return cached, nil
		}
		s.metrics.CacheMisses.Inc()
	}

	if err := s.requireQuota(ctx, searchQuotaCost); err != nil {
		return nil, err
	}

	results, err := s.youtube.SearchChannels(ctx, q, s.opts.SearchResults)
	s.metrics.observeCall("search.list", err)
	if err != nil {
		return nil, translateError(err, "search", q, "failed to search channels")
	}

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, q, results); err != nil {
			logger.Log.Warn("Failed to cache search results", zap.String("query", q), zap.Error(err))
		}
	}

	return results, nil
}

// CompareChannels returns analytics for two different channels, fetched concurrently.
func (s *AnalyticsService) CompareChannels(ctx context.Context, channelID, otherID string) (*models.ChannelComparison, error) {
	for _, id := range []string{channelID, otherID} {
		if err := s.validator.ValidateChannelID(id); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
	}
	if channelID == otherID {
		return nil, &ValidationError{Message: "cannot compare a channel with itself"}
	}

	var comparison models.ChannelComparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.GetChannelAnalytics(gctx, channelID)
		comparison.Primary = a
		return err
	})
	g.Go(func() error {
		b, err := s.GetChannelAnalytics(gctx, otherID)
		comparison.Compared = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &comparison, nil
}

// GetVideoComments returns top-level comments on a video. order is time or
// relevance; maxResults is clamped to the API page size.
func (s *AnalyticsService) GetVideoComments(ctx context.Context, videoID, order string, maxResults int64) ([]models.Comment, error) {
	if err := s.validator.ValidateVideoID(videoID); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	order, err := s.validator.ValidateCommentOrder(order)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	maxResults = validation.ClampMaxResults(maxResults, youtube.DefaultCommentResults, youtube.MaxCommentResults)

	if err := s.requireQuota(ctx, lookupQuotaCost); err != nil {
		return nil, err
	}

	comments, err := s.youtube.GetVideoComments(ctx, videoID, maxResults, order)
	s.metrics.observeCall("commentThreads.list", err)
	if err != nil {
		return nil, translateError(err, "video", videoID, "failed to fetch comments")
	}
	return comments, nil
}

// GetFeaturedChannels returns the channel IDs a channel features on its page.
func (s *AnalyticsService) GetFeaturedChannels(ctx context.Context, channelID string) ([]string, error) {
	if err := s.validator.ValidateChannelID(channelID); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	if err := s.requireQuota(ctx, lookupQuotaCost); err != nil {
		return nil, err
	}

	ids, err := s.youtube.GetFeaturedChannels(ctx, channelID)
	s.metrics.observeCall("channelSections.list", err)
	if err != nil {
		return nil, translateError(err, "channel", channelID, "failed to fetch featured channels")
	}
	return ids, nil
}

// GetSnapshotHistory returns stored ratings for a channel, newest first.
func (s *AnalyticsService) GetSnapshotHistory(ctx context.Context, channelID string, limit int) ([]models.SnapshotDTO, error) {
	if err := s.validator.ValidateChannelID(channelID); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if limit < 0 || limit > MaxHistoryLimit {
		return nil, &ValidationError{Message: fmt.Sprintf("limit must be between 0 and %d", MaxHistoryLimit)}
	}
	if s.snapshots == nil {
		return nil, &ProcessingError{Message: "snapshot history unavailable", Cause: errors.New("no snapshot store configured")}
	}

	snapshots, err := s.snapshots.ListSnapshots(ctx, channelID, limit)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to load snapshot history", Cause: err}
	}

	out := make([]models.SnapshotDTO, 0, len(snapshots))
	for _, snap := range snapshots {
		out = append(out, models.NewSnapshotDTO(snap))
	}
	return out, nil
}

// GetQuotaInfo reports today's YouTube quota consumption.
func (s *AnalyticsService) GetQuotaInfo(ctx context.Context) (*models.QuotaInfo, error) {
	if s.quota == nil {
		return nil, &ProcessingError{Message: "quota tracking unavailable", Cause: errors.New("no quota manager configured")}
	}
	info, err := s.quota.GetQuotaInfo(ctx)
	if err != nil {
		return nil, &ProcessingError{Message: "failed to load quota usage", Cause: err}
	}
	return info, nil
}

func (s *AnalyticsService) requireQuota(ctx context.Context, cost int) error {
	if s.quota == nil {
		return nil
	}

	available, info, err := s.quota.CheckQuotaAvailable(ctx, cost)
	if err != nil {
		return &ProcessingError{Message: "failed to check quota", Cause: err}
	}
	if !available {
		return fmt.Errorf("%w: %d/%d used", ErrQuotaExhausted, info.QuotaUsed, info.QuotaLimit)
	}
	return nil
}

func channelSummary(ch *youtube.Channel) models.ChannelSummary {
	r := ch.Record
	return models.ChannelSummary{
		ID:                    ch.ID,
		Title:                 ch.Title,
		Description:           ch.Description,
		CustomURL:             ch.CustomURL,
		ThumbnailURL:          ch.ThumbnailURL,
		Country:               ch.Country,
		PublishedAt:           r.PublishedAt,
		ViewCount:             r.ViewCount,
		SubscriberCount:       r.SubscriberCount,
		HiddenSubscriberCount: r.HiddenSubscriberCount,
		VideoCount:            r.VideoCount,
		CommentCount:          r.CommentCount,
		TopicIDs:              r.TopicIDs,
		TopicCategories:       r.TopicCategories,
		Keywords:              r.Keywords,
	}
}

func videoIDs(videos []metrics.VideoRecord) []string {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	return ids
}
