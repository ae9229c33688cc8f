// Package youtube wraps the YouTube Data API v3 calls the analytics service needs.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/metrics"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

const (
	// MaxBatchSize is the most IDs videos.list accepts per request.
	MaxBatchSize = 50

	DefaultSearchResults   = 10
	DefaultActivityResults = 15
	DefaultCommentResults  = 100
	MaxCommentResults      = 100

	// UntitledVideo is used when an upload activity carries no title.
	UntitledVideo = "Untitled"

	searchQuotaCost  = 100
	defaultQuotaCost = 1
)

var (
	// ErrChannelNotFound is returned when channels.list yields no items.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrNotFound is returned when the API answers 404 for the requested resource.
	ErrNotFound = errors.New("youtube resource not found")

	// ErrQuotaExceeded is returned when the API rejects a call for quota reasons.
	ErrQuotaExceeded = errors.New("youtube api quota exceeded")
)

// QuotaRecorder receives the quota cost of every API call the client makes.
type QuotaRecorder interface {
	RecordQuotaUsage(ctx context.Context, quotaCost int, operationType string) error
}

// Channel is a channel's presentation fields plus the record the metrics engine consumes.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Channel struct {
	ID           string
	Title        string
	Description  string
	CustomURL    string
	ThumbnailURL string
	Country      string
	Record       metrics.ChannelRecord
}

// Activity is an upload entry from a channel's activity feed.
type Activity struct {
	VideoID      string
	Title        string
	ThumbnailURL string
}

// Client wraps the YouTube Data API v3 client.
type Client struct {
	service *youtube.Service
	quota   QuotaRecorder
}

// NewClient creates a new YouTube API client. Extra options are passed to the
// underlying service, which lets tests point it at a local endpoint.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// SetQuotaRecorder attaches a recorder that is charged for every call.
func (c *Client) SetQuotaRecorder(q QuotaRecorder) {
	c.quota = q
}

// SearchChannels searches for channels matching query.
func (c *Client) SearchChannels(ctx context.Context, query string, maxResults int64) ([]models.ChannelSearchResult, error) {
	if maxResults <= 0 {
		maxResults = DefaultSearchResults
	}

	resp, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	c.record(ctx, searchQuotaCost, "search.list")
	if err != nil {
		return nil, wrapAPIError(err, "search channels")
	}

	results := make([]models.ChannelSearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.ChannelId == "" {
			continue
		}
		result := models.ChannelSearchResult{ChannelID: item.Id.ChannelId}
		if item.Snippet != nil {
			result.Title = item.Snippet.Title
			result.Description = item.Snippet.Description
			result.ThumbnailURL = thumbnailURL(item.Snippet.Thumbnails)
			result.PublishedAt = parseYouTubeTime(item.Snippet.PublishedAt)
		}
		results = append(results, result)
	}

	return results, nil
}

// GetChannel fetches a channel's details and statistics.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	resp, err := c.service.Channels.List([]string{"snippet", "statistics", "topicDetails", "brandingSettings"}).
		Id(channelID).
		Context(ctx).
		Do()
	c.record(ctx, defaultQuotaCost, "channels.list")
	if err != nil {
		return nil, wrapAPIError(err, "get channel")
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("get channel %s: %w", channelID, ErrChannelNotFound)
	}

	return mapChannel(resp.Items[0]), nil
}

func mapChannel(item *youtube.Channel) *Channel {
	ch := &Channel{
		ID: item.Id,
		Record: metrics.ChannelRecord{
			TopicIDs:        []string{},
			TopicCategories: []string{},
		},
	}

	if item.Snippet != nil {
		ch.Title = item.Snippet.Title
		ch.Description = item.Snippet.Description
		ch.CustomURL = item.Snippet.CustomUrl
		ch.Country = item.Snippet.Country
		ch.ThumbnailURL = thumbnailURL(item.Snippet.Thumbnails)
		ch.Record.PublishedAt = parseYouTubeTime(item.Snippet.PublishedAt)
	}

	if stats := item.Statistics; stats != nil {
		ch.Record.ViewCount = int64(stats.ViewCount)
		ch.Record.SubscriberCount = int64(stats.SubscriberCount)
		ch.Record.HiddenSubscriberCount = stats.HiddenSubscriberCount
		ch.Record.VideoCount = int64(stats.VideoCount)
		ch.Record.CommentCount = int64(stats.CommentCount)
	}

	if item.TopicDetails != nil {
		if item.TopicDetails.TopicIds != nil {
			ch.Record.TopicIDs = item.TopicDetails.TopicIds
		}
		if item.TopicDetails.TopicCategories != nil {
			ch.Record.TopicCategories = item.TopicDetails.TopicCategories
		}
	}

	if item.BrandingSettings != nil && item.BrandingSettings.Channel != nil {
		ch.Record.Keywords = item.BrandingSettings.Channel.Keywords
	}

	return ch
}

// GetActivities returns the channel's recent uploads. Activities that are not
// uploads are dropped.
func (c *Client) GetActivities(ctx context.Context, channelID string, maxResults int64) ([]Activity, error) {
	if maxResults <= 0 {
		maxResults = DefaultActivityResults
	}

	resp, err := c.service.Activities.List([]string{"snippet", "contentDetails"}).
		ChannelId(channelID).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	c.record(ctx, defaultQuotaCost, "activities.list")
	if err != nil {
		return nil, wrapAPIError(err, "get activities")
	}

	activities := make([]Activity, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails == nil || item.ContentDetails.Upload == nil || item.ContentDetails.Upload.VideoId == "" {
			continue
		}
		activity := Activity{VideoID: item.ContentDetails.Upload.VideoId}
		if item.Snippet != nil {
			activity.Title = item.Snippet.Title
			activity.ThumbnailURL = thumbnailURL(item.Snippet.Thumbnails)
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// GetVideos fetches statistics for any number of videos, 50 per request.
// Videos the API does not return are absent from the result.
func (c *Client) GetVideos(ctx context.Context, videoIDs []string) ([]metrics.VideoRecord, error) {
	if len(videoIDs) == 0 {
		return []metrics.VideoRecord{}, nil
	}

	parts := []string{"snippet", "statistics", "topicDetails", "paidProductPlacementDetails"}
	videos := make([]metrics.VideoRecord, 0, len(videoIDs))

	for _, batch := range BatchIDs(videoIDs, MaxBatchSize) {
		resp, err := c.service.Videos.List(parts).Id(batch...).Context(ctx).Do()
		c.record(ctx, defaultQuotaCost, "videos.list")
		if err != nil {
			return nil, wrapAPIError(err, "get videos")
		}
		for _, item := range resp.Items {
			videos = append(videos, mapVideo(item))
		}
	}

	return videos, nil
}

func mapVideo(item *youtube.Video) metrics.VideoRecord {
	v := metrics.VideoRecord{
		ID:              item.Id,
		Tags:            []string{},
		TopicCategories: []string{},
	}

	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		v.Description = item.Snippet.Description
		v.ThumbnailURL = thumbnailURL(item.Snippet.Thumbnails)
		v.PublishedAt = parseYouTubeTime(item.Snippet.PublishedAt)
		v.CategoryID = item.Snippet.CategoryId
		if item.Snippet.Tags != nil {
			v.Tags = item.Snippet.Tags
		}
	}

	if stats := item.Statistics; stats != nil {
		v.ViewCount = int64(stats.ViewCount)
		v.LikeCount = int64(stats.LikeCount)
		v.CommentCount = int64(stats.CommentCount)
		v.FavoriteCount = int64(stats.FavoriteCount)
	}

	if item.TopicDetails != nil && item.TopicDetails.TopicCategories != nil {
		v.TopicCategories = item.TopicDetails.TopicCategories
	}

	if item.PaidProductPlacementDetails != nil {
		v.HasPaidProductPlacement = item.PaidProductPlacementDetails.HasPaidProductPlacement
	}

	return v
}

// GetLatestVideos joins the channel's latest uploads with their statistics,
// keeping activity order. Title and thumbnail come from the activity feed.
func (c *Client) GetLatestVideos(ctx context.Context, channelID string, count int64) ([]metrics.VideoRecord, error) {
	activities, err := c.GetActivities(ctx, channelID, count)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return []metrics.VideoRecord{}, nil
	}

	ids := make([]string, len(activities))
	for i, a := range activities {
		ids[i] = a.VideoID
	}

	details, err := c.GetVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]metrics.VideoRecord, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	videos := make([]metrics.VideoRecord, 0, len(activities))
	for _, a := range activities {
		v, ok := byID[a.VideoID]
		if !ok {
			continue
		}
		v.Title = a.Title
		if v.Title == "" {
			v.Title = UntitledVideo
		}
		if a.ThumbnailURL != "" {
			v.ThumbnailURL = a.ThumbnailURL
		}
		videos = append(videos, v)
	}

	return videos, nil
}

// GetVideoComments returns top-level comments on a video. order is "time" or
// "relevance".
func (c *Client) GetVideoComments(ctx context.Context, videoID string, maxResults int64, order string) ([]models.Comment, error) {
	if maxResults <= 0 || maxResults > MaxCommentResults {
		maxResults = DefaultCommentResults
	}
	if order == "" {
		order = "relevance"
	}

	resp, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(maxResults).
		Order(order).
		Context(ctx).
		Do()
	c.record(ctx, defaultQuotaCost, "commentThreads.list")
	if err != nil {
		return nil, wrapAPIError(err, "get video comments")
	}

	comments := make([]models.Comment, 0, len(resp.Items))
	for _, thread := range resp.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		top := thread.Snippet.TopLevelComment.Snippet
		comments = append(comments, models.Comment{
			ID:          thread.Id,
			AuthorName:  top.AuthorDisplayName,
			Text:        top.TextDisplay,
			LikeCount:   top.LikeCount,
			PublishedAt: parseYouTubeTime(top.PublishedAt),
			ReplyCount:  thread.Snippet.TotalReplyCount,
		})
	}

	return comments, nil
}

// GetFeaturedChannels collects the channel IDs listed in the channel's sections.
func (c *Client) GetFeaturedChannels(ctx context.Context, channelID string) ([]string, error) {
	resp, err := c.service.ChannelSections.List([]string{"contentDetails"}).
		ChannelId(channelID).
		Context(ctx).
		Do()
	c.record(ctx, defaultQuotaCost, "channelSections.list")
	if err != nil {
		return nil, wrapAPIError(err, "get featured channels")
	}

	featured := []string{}
	for _, section := range resp.Items {
		if section.ContentDetails != nil {
			featured = append(featured, section.ContentDetails.Channels...)
		}
	}

	return featured, nil
}

func (c *Client) record(ctx context.Context, cost int, operation string) {
	logger.Log.Debug("YouTube API call",
		zap.String("operation", operation),
		zap.Int("quotaCost", cost),
	)
	if c.quota == nil {
		return
	}
	if err := c.quota.RecordQuotaUsage(ctx, cost, operation); err != nil {
		logger.Log.Warn("Failed to record quota usage",
			zap.Error(err),
			zap.String("operation", operation),
		)
	}
}

func wrapAPIError(err error, operation string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusForbidden {
			for _, item := range apiErr.Errors {
				if item.Reason == "quotaExceeded" || item.Reason == "dailyLimitExceeded" {
					return fmt.Errorf("%s: %w", operation, ErrQuotaExceeded)
				}
			}
		}
		if apiErr.Code == http.StatusNotFound {
			return fmt.Errorf("%s: %w", operation, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func thumbnailURL(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// parseYouTubeTime parses an RFC3339 timestamp, returning the zero time on failure.
func parseYouTubeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BatchIDs splits ids into batches of at most size (1..50) elements.
func BatchIDs(ids []string, size int) [][]string {
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}

	var batches [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[i:end])
	}

	return batches
}
