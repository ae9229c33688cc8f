package metrics

import "time"

// ChannelMetrics is a partial record of channel-level indicators.
// A nil field is absent and is skipped by the composite rating.
type ChannelMetrics struct {
	SubscriberConversionRate    *float64 `json:"subscriberConversionRate,omitempty"`
	ChannelActivityRatio        *float64 `json:"channelActivityRatio,omitempty"`
	AudienceRetentionStrength   *float64 `json:"audienceRetentionStrength,omitempty"`
	ChannelGrowthMomentum       *float64 `json:"channelGrowthMomentum,omitempty"`
	ContentSubscriberEfficiency *float64 `json:"contentSubscriberEfficiency,omitempty"`
	ChannelEfficiencyIndex      *float64 `json:"channelEfficiencyIndex,omitempty"`
}

// SubscriberConversionRate is subscribers gained per 1,000 lifetime views.
func SubscriberConversionRate(ch ChannelRecord) float64 {
	return float64(ch.SubscriberCount) / float64(ch.ViewCount) * 1000
}

// ChannelActivityRatio is videos published per day since channel creation.
func ChannelActivityRatio(ch ChannelRecord, now time.Time) float64 {
	return float64(ch.VideoCount) / AgeDays(ch.PublishedAt, now)
}

// AudienceRetentionStrength is average views per video relative to the
// subscriber base, boosted by one percent per video in the catalog.
func AudienceRetentionStrength(ch ChannelRecord) float64 {
	videos := float64(ch.VideoCount)
	viewsPerVideo := float64(ch.ViewCount) / videos
	return viewsPerVideo / float64(ch.SubscriberCount) * (1 + videos/100)
}

// ChannelGrowthMomentum is subscribers per day scaled by output volume.
func ChannelGrowthMomentum(ch ChannelRecord, now time.Time) float64 {
	subsPerDay := float64(ch.SubscriberCount) / AgeDays(ch.PublishedAt, now)
	return subsPerDay * (float64(ch.VideoCount) / 10)
}

// ContentSubscriberEfficiency is subscribers gained per published video.
func ContentSubscriberEfficiency(ch ChannelRecord) float64 {
	return float64(ch.SubscriberCount) / float64(ch.VideoCount)
}

// ChannelEfficiencyIndex combines average views per video with the mean
// per-video engagement ratio, normalized again by catalog size.
//
// videos must not be empty: the mean of an empty list is NaN and so is the
// result. Callers check the length before calling.
func ChannelEfficiencyIndex(ch ChannelRecord, videos []VideoRecord) float64 {
	var sum float64
	for _, v := range videos {
		sum += v.interactions() / float64(v.ViewCount)
	}
	avgEngagement := sum / float64(len(videos))

	videoCount := float64(ch.VideoCount)
	return (float64(ch.ViewCount) / videoCount) * avgEngagement / videoCount
}

// ComputeChannelMetrics evaluates every channel-level indicator at the same
// instant. ChannelEfficiencyIndex is left absent when videos is empty.
func ComputeChannelMetrics(ch ChannelRecord, videos []VideoRecord, now time.Time) ChannelMetrics {
	m := ChannelMetrics{
		SubscriberConversionRate:    Float(SubscriberConversionRate(ch)),
		ChannelActivityRatio:        Float(ChannelActivityRatio(ch, now)),
		AudienceRetentionStrength:   Float(AudienceRetentionStrength(ch)),
		ChannelGrowthMomentum:       Float(ChannelGrowthMomentum(ch, now)),
		ContentSubscriberEfficiency: Float(ContentSubscriberEfficiency(ch)),
	}
	if len(videos) > 0 {
		m.ChannelEfficiencyIndex = Float(ChannelEfficiencyIndex(ch, videos))
	}
	return m
}

// Float returns a pointer to v, for building partial ChannelMetrics literals.
func Float(v float64) *float64 {
	return &v
}
