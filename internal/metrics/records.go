// Package metrics derives channel and video performance indicators from raw
// YouTube statistics.
//
// Every function in this package is pure: it reads only its arguments and
// returns a new value. Age-dependent functions take the evaluation time as an
// explicit argument so a batch of computations can share one "now".
//
// Division by a zero count is not guarded. It produces +Inf or NaN following
// IEEE-754 float64 semantics and callers decide how to present such values
// (see IsFinite).
package metrics

import (
	"math"
	"time"
)

const secondsPerDay = 86400

// ChannelRecord holds a channel's public statistics at fetch time.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ChannelRecord struct {
	PublishedAt           time.Time `json:"publishedAt"`
	ViewCount             int64     `json:"viewCount"`
	SubscriberCount       int64     `json:"subscriberCount"`
	HiddenSubscriberCount bool      `json:"hiddenSubscriberCount"`
	VideoCount            int64     `json:"videoCount"`
	CommentCount          int64     `json:"commentCount"`
	TopicIDs              []string  `json:"topicIds"`
	TopicCategories       []string  `json:"topicCategories"`
	Keywords              string    `json:"keywords"`
}

// VideoRecord holds one uploaded video's statistics.
// Title, Description and ThumbnailURL are carried for display only.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoRecord struct {
	ID                      string    `json:"id"`
	Title                   string    `json:"title"`
	Description             string    `json:"description,omitempty"`
	ThumbnailURL            string    `json:"thumbnailUrl,omitempty"`
	PublishedAt             time.Time `json:"publishedAt"`
	ViewCount               int64     `json:"viewCount"`
	LikeCount               int64     `json:"likeCount"`
	CommentCount            int64     `json:"commentCount"`
	FavoriteCount           int64     `json:"favoriteCount"`
	Tags                    []string  `json:"tags"`
	CategoryID              string    `json:"categoryId"`
	TopicCategories         []string  `json:"topicCategories"`
	HasPaidProductPlacement bool      `json:"hasPaidProductPlacement"`
}

// AgeDays returns the fractional number of days between publishedAt and now.
// The value is not rounded and is negative when publishedAt is after now.
func AgeDays(publishedAt, now time.Time) float64 {
	return now.Sub(publishedAt).Seconds() / secondsPerDay
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// interactions is likes plus comments, the numerator shared by most
// engagement formulas.
func (v VideoRecord) interactions() float64 {
	return float64(v.LikeCount) + float64(v.CommentCount)
}
