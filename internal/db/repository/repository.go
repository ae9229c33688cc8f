// Package repository provides database operations for channel snapshots and API quota usage.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/db"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
)

// DefaultHistoryLimit bounds ListSnapshots when the caller passes no limit.
const DefaultHistoryLimit = 30

// Pool is the subset of *pgxpool.Pool the repository uses.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Repository handles all database operations for the analytics service.
type Repository struct {
	db Pool
}

// New creates a new Repository backed by pool.
func New(pool Pool) *Repository {
	return &Repository{db: pool}
}

// Ping verifies the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return db.WrapError(r.db.Ping(ctx), "ping database")
}

// Snapshot methods

const snapshotColumns = `id, channel_id, view_count, subscriber_count, video_count,
		       subscriber_conversion_rate, channel_activity_ratio, audience_retention_strength,
		       channel_growth_momentum, content_subscriber_efficiency, channel_efficiency_index,
		       score, rating, computed_at, created_at`

// SaveSnapshot inserts a snapshot. A zero ID is replaced with a new UUID; ID
// and CreatedAt are written back to s.
func (r *Repository) SaveSnapshot(ctx context.Context, s *models.ChannelSnapshot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO channel_snapshots
		(id, channel_id, view_count, subscriber_count, video_count,
		 subscriber_conversion_rate, channel_activity_ratio, audience_retention_strength,
		 channel_growth_momentum, content_subscriber_efficiency, channel_efficiency_index,
		 score, rating, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`
	m := s.Metrics
	err := r.db.QueryRow(ctx, query,
		s.ID, s.ChannelID, s.ViewCount, s.SubscriberCount, s.VideoCount,
		m.SubscriberConversionRate, m.ChannelActivityRatio, m.AudienceRetentionStrength,
		m.ChannelGrowthMomentum, m.ContentSubscriberEfficiency, m.ChannelEfficiencyIndex,
		s.Score, s.Rating, s.ComputedAt,
	).Scan(&s.CreatedAt)

	return db.WrapError(err, "save snapshot")
}

// ListSnapshots returns up to limit snapshots for a channel, newest first.
func (r *Repository) ListSnapshots(ctx context.Context, channelID string, limit int) ([]*models.ChannelSnapshot, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT ` + snapshotColumns + `
		FROM channel_snapshots
		WHERE channel_id = $1
		ORDER BY computed_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, channelID, limit)
	if err != nil {
		return nil, db.WrapError(err, "list snapshots")
	}
	defer rows.Close()

	snapshots := []*models.ChannelSnapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, db.WrapError(err, "scan snapshot")
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "list snapshots")
	}

	return snapshots, nil
}

// LatestSnapshot returns the most recent snapshot for a channel, or an error
// wrapping db.ErrNotFound.
func (r *Repository) LatestSnapshot(ctx context.Context, channelID string) (*models.ChannelSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM channel_snapshots
		WHERE channel_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`
	s, err := scanSnapshot(r.db.QueryRow(ctx, query, channelID))
	if err != nil {
		return nil, db.WrapError(err, "latest snapshot")
	}
	return s, nil
}

// ListStaleChannels returns channels whose newest snapshot was computed before
// cutoff, stalest first.
func (r *Repository) ListStaleChannels(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT channel_id
		FROM channel_snapshots
		GROUP BY channel_id
		HAVING MAX(computed_at) < $1
		ORDER BY MAX(computed_at) ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, db.WrapError(err, "list stale channels")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, db.WrapError(err, "scan channel id")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "list stale channels")
	}

	return ids, nil
}

func scanSnapshot(row pgx.Row) (*models.ChannelSnapshot, error) {
	var s models.ChannelSnapshot
	m := &s.Metrics
	err := row.Scan(
		&s.ID, &s.ChannelID, &s.ViewCount, &s.SubscriberCount, &s.VideoCount,
		&m.SubscriberConversionRate, &m.ChannelActivityRatio, &m.AudienceRetentionStrength,
		&m.ChannelGrowthMomentum, &m.ContentSubscriberEfficiency, &m.ChannelEfficiencyIndex,
		&s.Score, &s.Rating, &s.ComputedAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Quota methods

// GetTodaysQuota returns today's usage. A day with no recorded calls reports zero usage.
// QuotaLimit and QuotaRemaining are left for the caller, which owns the limit.
func (r *Repository) GetTodaysQuota(ctx context.Context) (*models.QuotaInfo, error) {
	query := `
		SELECT date, quota_used, operations_count
		FROM api_quota_usage
		WHERE date = CURRENT_DATE
	`
	info := &models.QuotaInfo{}
	err := r.db.QueryRow(ctx, query).Scan(&info.Date, &info.QuotaUsed, &info.OperationsCount)
	if errors.Is(err, pgx.ErrNoRows) {
		now := time.Now().UTC()
		return &models.QuotaInfo{
			Date:            time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			OperationsCount: map[string]int{},
		}, nil
	}
	if err != nil {
		return nil, db.WrapError(err, "get todays quota")
	}
	if info.OperationsCount == nil {
		info.OperationsCount = map[string]int{}
	}

	return info, nil
}

// IncrementQuota adds quotaCost to today's usage and counts one call of operationType.
func (r *Repository) IncrementQuota(ctx context.Context, quotaCost int, operationType string) error {
	if operationType == "" {
		operationType = "other"
	}

	query := `
		INSERT INTO api_quota_usage (date, quota_used, operations_count)
		VALUES (CURRENT_DATE, $1, jsonb_build_object($2::text, 1))
		ON CONFLICT (date) DO UPDATE SET
			quota_used = api_quota_usage.quota_used + EXCLUDED.quota_used,
			operations_count = jsonb_set(
				api_quota_usage.operations_count,
				ARRAY[$2::text],
				to_jsonb(COALESCE((api_quota_usage.operations_count ->> $2::text)::int, 0) + 1)
			),
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, quotaCost, operationType)
	return db.WrapError(err, "increment quota")
}
