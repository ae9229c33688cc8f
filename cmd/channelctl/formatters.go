package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/format"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
)

type formatFunc func(w io.Writer)

func formatSearchResults(w io.Writer, results []models.ChannelSearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No channels found.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "[%d] %s (%s)\n", i+1, r.Title, r.ChannelID)
	}
}

func formatAnalytics(w io.Writer, a *models.ChannelAnalytics) {
	ch := a.Channel
	fmt.Fprintf(w, "%s (%s)\n", ch.Title, ch.ID)
	fmt.Fprintln(w, strings.Repeat("=", len(ch.Title)+len(ch.ID)+3))

	subscribers := format.Count(ch.SubscriberCount)
	if ch.HiddenSubscriberCount {
		subscribers = "hidden"
	}
	fmt.Fprintf(w, "Subscribers: %s  Views: %s  Videos: %s\n",
		subscribers, format.Count(ch.ViewCount), format.Count(ch.VideoCount))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Rating: %s (score %s)\n", a.Rating.Rating, format.Metric(float64(a.Rating.Score), 2))
	if a.Rating.Description != "" {
		fmt.Fprintf(w, "  %s\n", a.Rating.Description)
	}
	fmt.Fprintln(w)

	m := a.ChannelMetrics
	fmt.Fprintln(w, "Channel metrics:")
	writeMetric(w, "Subscriber conversion rate", m.SubscriberConversionRate)
	writeMetric(w, "Channel activity ratio", m.ChannelActivityRatio)
	writeMetric(w, "Audience retention strength", m.AudienceRetentionStrength)
	writeMetric(w, "Channel growth momentum", m.ChannelGrowthMomentum)
	writeMetric(w, "Content subscriber efficiency", m.ContentSubscriberEfficiency)
	writeMetric(w, "Channel efficiency index", m.ChannelEfficiencyIndex)

	if len(a.Videos) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Latest videos:")
	for _, v := range a.Videos {
		fmt.Fprintf(w, "  %s  %-8s views  %-8s engagement  %s\n",
			v.Video.PublishedAt.Format(time.DateOnly),
			format.Count(v.Video.ViewCount),
			format.Percent(float64(v.Metrics.EngagementRatio), 2),
			v.Video.Title,
		)
	}
}

func writeMetric(w io.Writer, label string, v *models.Number) {
	var x *float64
	if v != nil {
		f := float64(*v)
		x = &f
	}
	fmt.Fprintf(w, "  %-30s %s\n", label+":", format.OptionalMetric(x, 2))
}

func formatComparison(w io.Writer, c *models.ChannelComparison) {
	formatAnalytics(w, c.Primary)
	fmt.Fprintln(w)
	formatAnalytics(w, c.Compared)
}

func formatComments(w io.Writer, comments []models.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments.")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "%s (%s likes, %d replies)\n  %s\n",
			c.AuthorName, format.Count(c.LikeCount), c.ReplyCount, c.Text)
	}
}
