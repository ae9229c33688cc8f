package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/metrics"
)

func TestNumber_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"finite", 12.5, "12.5"},
		{"zero", 0, "0"},
		{"nan", math.NaN(), "null"},
		{"positive infinity", math.Inf(1), "null"},
		{"negative infinity", math.Inf(-1), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(Number(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var n Number
	require.NoError(t, json.Unmarshal([]byte("3.25"), &n))
	assert.Equal(t, Number(3.25), n)

	require.NoError(t, json.Unmarshal([]byte("null"), &n))
	assert.True(t, math.IsNaN(float64(n)))

	assert.Error(t, json.Unmarshal([]byte(`"x"`), &n))
}

func TestChannelMetricsDTO_AbsentAndNonFinite(t *testing.T) {
	dto := NewChannelMetricsDTO(metrics.ChannelMetrics{
		SubscriberConversionRate:    metrics.Float(2),
		ContentSubscriberEfficiency: metrics.Float(math.Inf(1)),
	})

	b, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.JSONEq(t, `{"subscriberConversionRate":2,"contentSubscriberEfficiency":null}`, string(b))
}

func TestChannelMetricsDTO_RoundTripKeepsNonFinite(t *testing.T) {
	in := NewChannelMetricsDTO(metrics.ChannelMetrics{
		SubscriberConversionRate:  metrics.Float(2),
		AudienceRetentionStrength: metrics.Float(math.NaN()),
		ChannelEfficiencyIndex:    metrics.Float(math.Inf(1)),
	})

	first, err := json.Marshal(in)
	require.NoError(t, err)

	var out ChannelMetricsDTO
	require.NoError(t, json.Unmarshal(first, &out))

	require.NotNil(t, out.SubscriberConversionRate)
	assert.Equal(t, Number(2), *out.SubscriberConversionRate)
	require.NotNil(t, out.AudienceRetentionStrength)
	assert.True(t, math.IsNaN(float64(*out.AudienceRetentionStrength)))
	require.NotNil(t, out.ChannelEfficiencyIndex)
	assert.Nil(t, out.ChannelActivityRatio)

	second, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))

	assert.Error(t, json.Unmarshal([]byte(`{"channelActivityRatio":"x"}`), &out))
}

func TestChannelAnalytics_MarshalsWithZeroViewVideo(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ch := metrics.ChannelRecord{PublishedAt: now.AddDate(-1, 0, 0), ViewCount: 10, SubscriberCount: 0, VideoCount: 1}
	v := metrics.VideoRecord{ID: "v", PublishedAt: now, ViewCount: 0}

	payload := ChannelAnalytics{
		ChannelMetrics: NewChannelMetricsDTO(metrics.ComputeChannelMetrics(ch, []metrics.VideoRecord{v}, now)),
		Rating:         NewRatingDTO(metrics.Rate(metrics.ComputeChannelMetrics(ch, nil, now))),
		Videos: []VideoAnalytics{{
			Video:   v,
			Metrics: NewVideoMetricsDTO(metrics.ComputeVideoMetrics(v, ch, now)),
		}},
		ComputedAt: now,
	}

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	videos := decoded["videos"].([]any)
	m := videos[0].(map[string]any)["metrics"].(map[string]any)
	assert.Nil(t, m["engagementRatio"])
}
