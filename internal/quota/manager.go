// Package quota tracks YouTube Data API quota consumption against a daily limit.
package quota

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

const (
	// DefaultDailyLimit is the YouTube Data API v3 default allocation.
	DefaultDailyLimit = 10000
	// DefaultThresholdPercent stops new work once this share of the limit is spent.
	DefaultThresholdPercent = 90
)

// Repository stores daily quota usage.
type Repository interface {
	GetTodaysQuota(ctx context.Context) (*models.QuotaInfo, error)
	IncrementQuota(ctx context.Context, quotaCost int, operationType string) error
}

// Manager handles YouTube API quota management.
type Manager struct {
	repo             Repository
	dailyLimit       int
	thresholdPercent int
}

// NewManager creates a new quota manager. Out of range values fall back to the defaults.
func NewManager(repo Repository, dailyLimit int, thresholdPercent int) *Manager {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = DefaultThresholdPercent
	}

	return &Manager{
		repo:             repo,
		dailyLimit:       dailyLimit,
		thresholdPercent: thresholdPercent,
	}
}

func (m *Manager) threshold() int {
	return (m.dailyLimit * m.thresholdPercent) / 100
}

// CheckQuotaAvailable reports whether requiredQuota more units fit under the threshold.
func (m *Manager) CheckQuotaAvailable(ctx context.Context, requiredQuota int) (bool, *models.QuotaInfo, error) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		return false, nil, err
	}

	threshold := m.threshold()

	if info.QuotaUsed >= threshold {
		logger.Log.Warn("Quota threshold reached",
			zap.Int("quotaUsed", info.QuotaUsed),
			zap.Int("dailyLimit", m.dailyLimit),
			zap.Int("threshold", threshold),
		)
		return false, info, nil
	}

	if info.QuotaUsed+requiredQuota > threshold {
		logger.Log.Warn("Not enough quota for operation",
			zap.Int("required", requiredQuota),
			zap.Int("quotaUsed", info.QuotaUsed),
			zap.Int("threshold", threshold),
		)
		return false, info, nil
	}

	return true, info, nil
}

// RecordQuotaUsage records API quota usage. It satisfies youtube.QuotaRecorder.
func (m *Manager) RecordQuotaUsage(ctx context.Context, quotaCost int, operationType string) error {
	if err := m.repo.IncrementQuota(ctx, quotaCost, operationType); err != nil {
		return fmt.Errorf("failed to record quota usage: %w", err)
	}

	logger.Log.Debug("Quota usage recorded",
		zap.Int("cost", quotaCost),
		zap.String("operation", operationType),
	)

	return nil
}

// GetQuotaInfo returns today's usage with the configured limit applied.
func (m *Manager) GetQuotaInfo(ctx context.Context) (*models.QuotaInfo, error) {
	info, err := m.repo.GetTodaysQuota(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota info: %w", err)
	}

	info.QuotaLimit = m.dailyLimit
	info.QuotaRemaining = m.dailyLimit - info.QuotaUsed
	if info.QuotaRemaining < 0 {
		info.QuotaRemaining = 0
	}

	return info, nil
}

// GetQuotaUsagePercentage returns the percentage of daily quota used.
func (m *Manager) GetQuotaUsagePercentage(ctx context.Context) (float64, error) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		return 0, err
	}

	return float64(info.QuotaUsed) / float64(m.dailyLimit) * 100, nil
}

// IsQuotaExhausted checks if the quota threshold has been reached.
func (m *Manager) IsQuotaExhausted(ctx context.Context) (bool, error) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		return false, err
	}

	return info.QuotaUsed >= m.threshold(), nil
}

// GetRemainingQuota returns how much quota is left before the threshold.
func (m *Manager) GetRemainingQuota(ctx context.Context) (int, error) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		return 0, err
	}

	remaining := m.threshold() - info.QuotaUsed
	if remaining < 0 {
		return 0, nil
	}

	return remaining, nil
}
