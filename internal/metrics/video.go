package metrics

import (
	"math"
	"time"
)

// VideoMetrics are the per-video indicators computed against the owning channel.
type VideoMetrics struct {
	EngagementRatio          float64 `json:"engagementRatio"`
	EngagementDepthScore     float64 `json:"engagementDepthScore"`
	ViewToSubscriberRatio    float64 `json:"viewToSubscriberRatio"`
	VideoEfficiencyIndex     float64 `json:"videoEfficiencyIndex"`
	DailyEngagementDensity   float64 `json:"dailyEngagementDensity"`
	AudienceInteractionRatio float64 `json:"audienceInteractionRatio"`
}

// EngagementRatio is the percentage of viewers who liked or commented.
func EngagementRatio(v VideoRecord) float64 {
	return v.interactions() / float64(v.ViewCount) * 100
}

// EngagementDepthScore weights comments three times as heavily as likes.
func EngagementDepthScore(v VideoRecord) float64 {
	return (float64(v.LikeCount) + float64(v.CommentCount)*3) / float64(v.ViewCount) * 100
}

// ViewToSubscriberRatio is the video's views as a percentage of the channel's
// subscribers. Values above 100 mean the video reached beyond the subscriber base.
func ViewToSubscriberRatio(v VideoRecord, ch ChannelRecord) float64 {
	return float64(v.ViewCount) / float64(ch.SubscriberCount) * 100
}

// VideoEfficiencyIndex compares the video's views per day with the channel's
// lifetime average views per day. 1.0 means the video performs exactly at the
// channel average.
func VideoEfficiencyIndex(v VideoRecord, ch ChannelRecord, now time.Time) float64 {
	videoDaily := float64(v.ViewCount) / AgeDays(v.PublishedAt, now)
	channelDaily := float64(ch.ViewCount) / AgeDays(ch.PublishedAt, now)
	return videoDaily / channelDaily
}

// DailyEngagementDensity is likes plus comments per day since upload.
// Ages under one day count as one day.
func DailyEngagementDensity(v VideoRecord, now time.Time) float64 {
	return v.interactions() / math.Max(1, AgeDays(v.PublishedAt, now))
}

// AudienceInteractionRatio is likes plus comments per 1,000 subscribers.
func AudienceInteractionRatio(v VideoRecord, ch ChannelRecord) float64 {
	return v.interactions() / float64(ch.SubscriberCount) * 1000
}

// ComputeVideoMetrics evaluates every video-level indicator at the same instant.
func ComputeVideoMetrics(v VideoRecord, ch ChannelRecord, now time.Time) VideoMetrics {
	return VideoMetrics{
		EngagementRatio:          EngagementRatio(v),
		EngagementDepthScore:     EngagementDepthScore(v),
		ViewToSubscriberRatio:    ViewToSubscriberRatio(v, ch),
		VideoEfficiencyIndex:     VideoEfficiencyIndex(v, ch, now),
		DailyEngagementDensity:   DailyEngagementDensity(v, now),
		AudienceInteractionRatio: AudienceInteractionRatio(v, ch),
	}
}
