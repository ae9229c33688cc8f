// Package models contains the data models and DTOs for the channel analytics service.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/metrics"
)

// Number is a float64 that encodes NaN and infinities as JSON null.
// encoding/json rejects non-finite floats, and the metrics engine produces
// them whenever a count it divides by is zero.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler. null decodes to NaN.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// OptionalNumber converts an optional engine value to its wire form.
// Absent values stay nil.
func OptionalNumber(v *float64) *Number {
	if v == nil {
		return nil
	}
	n := Number(*v)
	return &n
}

// ChannelSummary is the channel header shown above the analytics.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ChannelSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CustomURL    string    `json:"customUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Country      string    `json:"country,omitempty"`
	PublishedAt  time.Time `json:"publishedAt"`

	ViewCount             int64    `json:"viewCount"`
	SubscriberCount       int64    `json:"subscriberCount"`
	HiddenSubscriberCount bool     `json:"hiddenSubscriberCount"`
	VideoCount            int64    `json:"videoCount"`
	CommentCount          int64    `json:"commentCount"`
	TopicIDs              []string `json:"topicIds"`
	TopicCategories       []string `json:"topicCategories"`
	Keywords              string   `json:"keywords"`
}

// VideoMetricsDTO is the wire form of metrics.VideoMetrics.
type VideoMetricsDTO struct {
	EngagementRatio          Number `json:"engagementRatio"`
	EngagementDepthScore     Number `json:"engagementDepthScore"`
	ViewToSubscriberRatio    Number `json:"viewToSubscriberRatio"`
	VideoEfficiencyIndex     Number `json:"videoEfficiencyIndex"`
	DailyEngagementDensity   Number `json:"dailyEngagementDensity"`
	AudienceInteractionRatio Number `json:"audienceInteractionRatio"`
}

// NewVideoMetricsDTO converts engine output to its wire form.
func NewVideoMetricsDTO(m metrics.VideoMetrics) VideoMetricsDTO {
	return VideoMetricsDTO{
		EngagementRatio:          Number(m.EngagementRatio),
		EngagementDepthScore:     Number(m.EngagementDepthScore),
		ViewToSubscriberRatio:    Number(m.ViewToSubscriberRatio),
		VideoEfficiencyIndex:     Number(m.VideoEfficiencyIndex),
		DailyEngagementDensity:   Number(m.DailyEngagementDensity),
		AudienceInteractionRatio: Number(m.AudienceInteractionRatio),
	}
}

// ChannelMetricsDTO is the wire form of metrics.ChannelMetrics.
// Absent metrics are omitted; non-finite ones are null.
type ChannelMetricsDTO struct {
	SubscriberConversionRate    *Number `json:"subscriberConversionRate,omitempty"`
	ChannelActivityRatio        *Number `json:"channelActivityRatio,omitempty"`
	AudienceRetentionStrength   *Number `json:"audienceRetentionStrength,omitempty"`
	ChannelGrowthMomentum       *Number `json:"channelGrowthMomentum,omitempty"`
	ContentSubscriberEfficiency *Number `json:"contentSubscriberEfficiency,omitempty"`
	ChannelEfficiencyIndex      *Number `json:"channelEfficiencyIndex,omitempty"`
}

// UnmarshalJSON keeps a metric that was sent as null present, as NaN, so a
// decoded payload re-encodes to the same document.
func (d *ChannelMetricsDTO) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = ChannelMetricsDTO{}
	fields := map[string]**Number{
		"subscriberConversionRate":    &d.SubscriberConversionRate,
		"channelActivityRatio":        &d.ChannelActivityRatio,
		"audienceRetentionStrength":   &d.AudienceRetentionStrength,
		"channelGrowthMomentum":       &d.ChannelGrowthMomentum,
		"contentSubscriberEfficiency": &d.ContentSubscriberEfficiency,
		"channelEfficiencyIndex":      &d.ChannelEfficiencyIndex,
	}
	for key, dst := range fields {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var n Number
		if err := n.UnmarshalJSON(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = &n
	}
	return nil
}

// NewChannelMetricsDTO converts engine output to its wire form.
func NewChannelMetricsDTO(m metrics.ChannelMetrics) ChannelMetricsDTO {
	return ChannelMetricsDTO{
		SubscriberConversionRate:    OptionalNumber(m.SubscriberConversionRate),
		ChannelActivityRatio:        OptionalNumber(m.ChannelActivityRatio),
		AudienceRetentionStrength:   OptionalNumber(m.AudienceRetentionStrength),
		ChannelGrowthMomentum:       OptionalNumber(m.ChannelGrowthMomentum),
		ContentSubscriberEfficiency: OptionalNumber(m.ContentSubscriberEfficiency),
		ChannelEfficiencyIndex:      OptionalNumber(m.ChannelEfficiencyIndex),
	}
}

// RatingDTO is the wire form of metrics.ChannelRating.
type RatingDTO struct {
	Rating      string `json:"rating"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Score       Number `json:"score"`
}

// NewRatingDTO converts engine output to its wire form.
func NewRatingDTO(r metrics.ChannelRating) RatingDTO {
	return RatingDTO{
		Rating:      r.Rating,
		Color:       r.Color,
		Description: r.Description,
		Score:       Number(r.Score),
	}
}

// VideoAnalytics pairs a video with its computed metrics.
type VideoAnalytics struct {
	Video   metrics.VideoRecord `json:"video"`
	Metrics VideoMetricsDTO     `json:"metrics"`
}

// TimelinePointDTO is the wire form of metrics.TimelinePoint.
type TimelinePointDTO struct {
	VideoID         string    `json:"videoId"`
	PublishedAt     time.Time `json:"publishedAt"`
	Views           int64     `json:"views"`
	Likes           int64     `json:"likes"`
	Comments        int64     `json:"comments"`
	EngagementRatio Number    `json:"engagementRatio"`
}

// Charts holds the precomputed series for the dashboard graphs.
type Charts struct {
	TopVideosByViews      []string                `json:"topVideosByViews"`
	TopVideosByEngagement []string                `json:"topVideosByEngagement"`
	EngagementTimeline    []TimelinePointDTO      `json:"engagementTimeline"`
	CategoryDistribution  []metrics.CategoryCount `json:"categoryDistribution"`
}

// ChannelAnalytics is the full analytics payload for one channel.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ChannelAnalytics struct {
	Channel        ChannelSummary    `json:"channel"`
	ChannelMetrics ChannelMetricsDTO `json:"channelMetrics"`
	Rating         RatingDTO         `json:"rating"`
	Videos         []VideoAnalytics  `json:"videos"`
	Charts         Charts            `json:"charts"`
	ComputedAt     time.Time         `json:"computedAt"`
}

// ChannelComparison holds analytics for two channels side by side.
type ChannelComparison struct {
	Primary  *ChannelAnalytics `json:"primary"`
	Compared *ChannelAnalytics `json:"compared"`
}

// ChannelSearchResult is one hit from a channel search.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ChannelSearchResult struct {
	ChannelID    string    `json:"channelId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	PublishedAt  time.Time `json:"publishedAt"`
}

// Comment is a top-level comment on a video.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Comment struct {
	ID          string    `json:"id"`
	AuthorName  string    `json:"authorName"`
	Text        string    `json:"text"`
	LikeCount   int64     `json:"likeCount"`
	PublishedAt time.Time `json:"publishedAt"`
	ReplyCount  int64     `json:"replyCount"`
}

// ChannelSnapshot is a persisted point-in-time rating of a channel.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ChannelSnapshot struct {
	ID              uuid.UUID              `json:"id"`
	ChannelID       string                 `json:"channelId"`
	ViewCount       int64                  `json:"viewCount"`
	SubscriberCount int64                  `json:"subscriberCount"`
	VideoCount      int64                  `json:"videoCount"`
	Metrics         metrics.ChannelMetrics `json:"-"`
	Score           float64                `json:"-"`
	Rating          string                 `json:"rating"`
	ComputedAt      time.Time              `json:"computedAt"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// SnapshotDTO is the wire form of ChannelSnapshot.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SnapshotDTO struct {
	ID              uuid.UUID         `json:"id"`
	ChannelID       string            `json:"channelId"`
	ViewCount       int64             `json:"viewCount"`
	SubscriberCount int64             `json:"subscriberCount"`
	VideoCount      int64             `json:"videoCount"`
	Metrics         ChannelMetricsDTO `json:"metrics"`
	Score           Number            `json:"score"`
	Rating          string            `json:"rating"`
	ComputedAt      time.Time         `json:"computedAt"`
}

// NewSnapshotDTO converts a stored snapshot to its wire form.
func NewSnapshotDTO(s *ChannelSnapshot) SnapshotDTO {
	return SnapshotDTO{
		ID:              s.ID,
		ChannelID:       s.ChannelID,
		ViewCount:       s.ViewCount,
		SubscriberCount: s.SubscriberCount,
		VideoCount:      s.VideoCount,
		Metrics:         NewChannelMetricsDTO(s.Metrics),
		Score:           Number(s.Score),
		Rating:          s.Rating,
		ComputedAt:      s.ComputedAt,
	}
}

// RatingComputedEvent is published whenever a channel is rated.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RatingComputedEvent struct {
	EventID    uuid.UUID `json:"eventId"`
	ChannelID  string    `json:"channelId"`
	Rating     string    `json:"rating"`
	Score      Number    `json:"score"`
	ComputedAt time.Time `json:"computedAt"`
}

// QuotaInfo is the YouTube API quota usage for the current day.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type QuotaInfo struct {
	Date            time.Time      `json:"date"`
	QuotaUsed       int            `json:"quotaUsed"`
	QuotaLimit      int            `json:"quotaLimit"`
	QuotaRemaining  int            `json:"quotaRemaining"`
	OperationsCount map[string]int `json:"operationsCount"`
}

// RefreshResponseDTO is returned when a background refresh is enqueued.
type RefreshResponseDTO struct {
	TaskID    string    `json:"taskId"`
	ChannelID string    `json:"channelId"`
	Status    string    `json:"status"`
	QueuedAt  time.Time `json:"queuedAt"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
