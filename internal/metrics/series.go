package metrics

import (
	"sort"
	"time"
)

// TimelinePoint is one upload on the engagement-over-time chart.
type TimelinePoint struct {
	VideoID         string    `json:"videoId"`
	PublishedAt     time.Time `json:"publishedAt"`
	Views           int64     `json:"views"`
	Likes           int64     `json:"likes"`
	Comments        int64     `json:"comments"`
	EngagementRatio float64   `json:"engagementRatio"`
}

// CategoryCount is the number of uploads in one content category.
type CategoryCount struct {
	CategoryID string `json:"categoryId"`
	Count      int    `json:"count"`
}

// TopVideosByViews returns up to n videos ordered by view count, highest first.
func TopVideosByViews(videos []VideoRecord, n int) []VideoRecord {
	sorted := make([]VideoRecord, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ViewCount > sorted[j].ViewCount
	})
	return head(sorted, n)
}

// TopVideosByEngagement returns up to n videos ordered by engagement ratio,
// highest first. Videos whose ratio is not finite sort last.
func TopVideosByEngagement(videos []VideoRecord, n int) []VideoRecord {
	sorted := make([]VideoRecord, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := EngagementRatio(sorted[i]), EngagementRatio(sorted[j])
		if !IsFinite(a) {
			return false
		}
		if !IsFinite(b) {
			return true
		}
		return a > b
	})
	return head(sorted, n)
}

// EngagementTimeline takes the n most recent uploads and returns them oldest first.
func EngagementTimeline(videos []VideoRecord, n int) []TimelinePoint {
	recent := make([]VideoRecord, len(videos))
	copy(recent, videos)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].PublishedAt.After(recent[j].PublishedAt)
	})
	recent = head(recent, n)

	points := make([]TimelinePoint, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		v := recent[i]
		points = append(points, TimelinePoint{
			VideoID:         v.ID,
			PublishedAt:     v.PublishedAt,
			Views:           v.ViewCount,
			Likes:           v.LikeCount,
			Comments:        v.CommentCount,
			EngagementRatio: EngagementRatio(v),
		})
	}
	return points
}

// CategoryDistribution counts uploads per category, most common first.
// Videos without a category are ignored.
func CategoryDistribution(videos []VideoRecord) []CategoryCount {
	counts := make(map[string]int)
	for _, v := range videos {
		if v.CategoryID != "" {
			counts[v.CategoryID]++
		}
	}

	dist := make([]CategoryCount, 0, len(counts))
	for id, c := range counts {
		dist = append(dist, CategoryCount{CategoryID: id, Count: c})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].CategoryID < dist[j].CategoryID
	})
	return dist
}

func head(videos []VideoRecord, n int) []VideoRecord {
	if n >= 0 && n < len(videos) {
		return videos[:n]
	}
	return videos
}
