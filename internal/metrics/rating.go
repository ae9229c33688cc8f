package metrics

import "math"

// ChannelRating is the letter grade derived from a composite score.
type ChannelRating struct {
	Rating      string  `json:"rating"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// ratingComponent is one row of the composite weighting table.
type ratingComponent struct {
	name   string
	weight float64
	cap    float64 // raw value at which the component saturates to 1
	value  func(ChannelMetrics) *float64
}

var ratingComponents = []ratingComponent{
	{"subscriberConversionRate", 0.20, 10, func(m ChannelMetrics) *float64 { return m.SubscriberConversionRate }},
	{"channelActivityRatio", 0.15, 1, func(m ChannelMetrics) *float64 { return m.ChannelActivityRatio }},
	{"audienceRetentionStrength", 0.20, 5, func(m ChannelMetrics) *float64 { return m.AudienceRetentionStrength }},
	{"channelGrowthMomentum", 0.25, 100, func(m ChannelMetrics) *float64 { return m.ChannelGrowthMomentum }},
	{"contentSubscriberEfficiency", 0.10, 10000, func(m ChannelMetrics) *float64 { return m.ContentSubscriberEfficiency }},
	{"channelEfficiencyIndex", 0.10, 1, func(m ChannelMetrics) *float64 { return m.ChannelEfficiencyIndex }},
}

// gradeBand maps scores at or above minScore to a grade.
type gradeBand struct {
	minScore    float64
	rating      string
	color       string
	description string
}

// Ordered from highest to lowest; the last band catches everything else.
var gradeBands = []gradeBand{
	{0.90, "A+", "#059669", "Exceptional performance across growth, reach and engagement"},
	{0.80, "A", "#10B981", "Excellent channel with strong audience growth"},
	{0.70, "B+", "#22C55E", "Very good performance with healthy engagement"},
	{0.60, "B", "#84CC16", "Good performance with room to grow"},
	{0.50, "C+", "#EAB308", "Average performance on most indicators"},
	{0.40, "C", "#F59E0B", "Below average growth and engagement"},
	{0.30, "D+", "#F97316", "Weak performance on most indicators"},
	{math.Inf(-1), "D-", "#EF4444", "Poor performance, the channel needs significant improvement"},
}

// Weights returns a copy of the composite weighting table keyed by metric name.
func Weights() map[string]float64 {
	w := make(map[string]float64, len(ratingComponents))
	for _, c := range ratingComponents {
		w[c.name] = c.weight
	}
	return w
}

// Score folds the present metrics into a weighted score in [0, 1].
// Each metric is normalized as min(value/cap, 1); absent and NaN metrics are
// skipped and the weights of the remaining ones are renormalized. With no
// present metric the score is 0.
func Score(m ChannelMetrics) float64 {
	var total, weightSum float64
	for _, c := range ratingComponents {
		v := c.value(m)
		if v == nil || math.IsNaN(*v) {
			continue
		}
		total += math.Min(*v/c.cap, 1) * c.weight
		weightSum += c.weight
	}
	if weightSum > 0 {
		return total / weightSum
	}
	return 0
}

// GradeForScore maps a composite score to its band. Lower bounds are inclusive.
func GradeForScore(score float64) ChannelRating {
	band := gradeBands[len(gradeBands)-1]
	for _, b := range gradeBands {
		if score >= b.minScore {
			band = b
			break
		}
	}
	return ChannelRating{
		Rating:      band.rating,
		Color:       band.color,
		Description: band.description,
		Score:       score,
	}
}

// Rate computes the composite score of m and returns its grade.
func Rate(m ChannelMetrics) ChannelRating {
	return GradeForScore(Score(m))
}
