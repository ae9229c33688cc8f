package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
)

func newEvent() *models.RatingComputedEvent {
	return &models.RatingComputedEvent{
		EventID:    uuid.New(),
		ChannelID:  "UCabcdefghijklmnopqrstuv",
		Rating:     "A",
		Score:      0.81,
		ComputedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
