// Package validation checks request parameters before they reach the YouTube API.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Comment orderings accepted by commentThreads.list.
const (
	OrderRelevance = "relevance"
	OrderTime      = "time"
)

// DefaultMaxQueryLength bounds search queries.
const DefaultMaxQueryLength = 100

var (
	videoIDRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	channelIDRegex = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)
)

type Validator struct {
	maxQueryLength int
}

func New(maxQueryLength int) *Validator {
	if maxQueryLength <= 0 {
		maxQueryLength = DefaultMaxQueryLength
	}
	return &Validator{
		maxQueryLength: maxQueryLength,
	}
}

// ValidateChannelID rejects anything that is not a UC-prefixed channel ID.
func (v *Validator) ValidateChannelID(channelID string) error {
	if channelID == "" {
		return fmt.Errorf("channel ID is required")
	}
	if !channelIDRegex.MatchString(channelID) {
		return fmt.Errorf("invalid channel ID format: %s", channelID)
	}
	return nil
}

func (v *Validator) ValidateVideoID(videoID string) error {
	if videoID == "" {
		return fmt.Errorf("video ID is required")
	}
	if !videoIDRegex.MatchString(videoID) {
		return fmt.Errorf("invalid video ID format: %s", videoID)
	}
	return nil
}

// ValidateSearchQuery trims query and checks its length in characters.
func (v *Validator) ValidateSearchQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("search query is required")
	}
	if n := utf8.RuneCountInString(q); n > v.maxQueryLength {
		return "", fmt.Errorf("search query exceeds %d characters", v.maxQueryLength)
	}
	return q, nil
}

// ValidateCommentOrder returns the ordering to use; empty means relevance.
func (v *Validator) ValidateCommentOrder(order string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", OrderRelevance:
		return OrderRelevance, nil
	case OrderTime:
		return OrderTime, nil
	default:
		return "", fmt.Errorf("invalid comment order %q (expected %q or %q)", order, OrderTime, OrderRelevance)
	}
}

// ClampMaxResults maps a non-positive n to def and caps it at limit.
func ClampMaxResults(n, def, limit int64) int64 {
	if n <= 0 {
		n = def
	}
	if n > limit {
		n = limit
	}
	return n
}

func (v *Validator) IsValidVideoID(videoID string) bool {
	return videoIDRegex.MatchString(videoID)
}

func (v *Validator) IsValidChannelID(channelID string) bool {
	return channelIDRegex.MatchString(channelID)
}
