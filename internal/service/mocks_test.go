package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/metrics"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/youtube"
)

type mockYouTube struct {
	mock.Mock
}

func (m *mockYouTube) SearchChannels(ctx context.Context, query string, maxResults int64) ([]models.ChannelSearchResult, error) {
	args := m.Called(ctx, query, maxResults)
	results, _ := args.Get(0).([]models.ChannelSearchResult)
	return results, args.Error(1)
}

func (m *mockYouTube) GetChannel(ctx context.Context, channelID string) (*youtube.Channel, error) {
	args := m.Called(ctx, channelID)
	ch, _ := args.Get(0).(*youtube.Channel)
	return ch, args.Error(1)
}

func (m *mockYouTube) GetLatestVideos(ctx context.Context, channelID string, count int64) ([]metrics.VideoRecord, error) {
	args := m.Called(ctx, channelID, count)
	videos, _ := args.Get(0).([]metrics.VideoRecord)
	return videos, args.Error(1)
}

func (m *mockYouTube) GetVideoComments(ctx context.Context, videoID string, maxResults int64, order string) ([]models.Comment, error) {
	args := m.Called(ctx, videoID, maxResults, order)
	comments, _ := args.Get(0).([]models.Comment)
	return comments, args.Error(1)
}

func (m *mockYouTube) GetFeaturedChannels(ctx context.Context, channelID string) ([]string, error) {
	args := m.Called(ctx, channelID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type mockQuota struct {
	mock.Mock
}

func (m *mockQuota) CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, *models.QuotaInfo, error) {
	args := m.Called(ctx, requiredQuota)
	info, _ := args.Get(1).(*models.QuotaInfo)
	return args.Bool(0), info, args.Error(2)
}

func (m *mockQuota) GetQuotaInfo(ctx context.Context) (*models.QuotaInfo, error) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(*models.QuotaInfo)
	return info, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveSnapshot(ctx context.Context, s *models.ChannelSnapshot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockStore) ListSnapshots(ctx context.Context, channelID string, limit int) ([]*models.ChannelSnapshot, error) {
	args := m.Called(ctx, channelID, limit)
	snaps, _ := args.Get(0).([]*models.ChannelSnapshot)
	return snaps, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetAnalytics(ctx context.Context, channelID string) (*models.ChannelAnalytics, bool, error) {
	args := m.Called(ctx, channelID)
	a, _ := args.Get(0).(*models.ChannelAnalytics)
	return a, args.Bool(1), args.Error(2)
}

func (m *mockCache) SetAnalytics(ctx context.Context, channelID string, a *models.ChannelAnalytics) error {
	return m.Called(ctx, channelID, a).Error(0)
}

func (m *mockCache) InvalidateAnalytics(ctx context.Context, channelID string) error {
	return m.Called(ctx, channelID).Error(0)
}

func (m *mockCache) GetSearch(ctx context.Context, query string) ([]models.ChannelSearchResult, bool, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).([]models.ChannelSearchResult)
	return results, args.Bool(1), args.Error(2)
}

func (m *mockCache) SetSearch(ctx context.Context, query string, results []models.ChannelSearchResult) error {
	return m.Called(ctx, query, results).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRatingComputed(ctx context.Context, event *models.RatingComputedEvent) error {
	return m.Called(ctx, event).Error(0)
}
