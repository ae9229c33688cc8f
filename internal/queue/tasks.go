package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Task types
const (
	TypeRefreshChannel = "analytics:refresh_channel"
)

// RefreshChannelPayload is the payload for channel refresh tasks
type RefreshChannelPayload struct {
	ChannelID   string    `json:"channel_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewRefreshChannelTask creates a new channel refresh payload
func NewRefreshChannelTask(channelID string, requestedAt time.Time) (*RefreshChannelPayload, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}

	return &RefreshChannelPayload{
		ChannelID:   channelID,
		RequestedAt: requestedAt.UTC(),
	}, nil
}

// Marshal serializes the payload to JSON
func (p *RefreshChannelPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalRefreshChannelPayload deserializes JSON to payload
func UnmarshalRefreshChannelPayload(data []byte) (*RefreshChannelPayload, error) {
	var payload RefreshChannelPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.ChannelID == "" {
		return nil, fmt.Errorf("payload missing channel_id")
	}
	return &payload, nil
}
