package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/queue"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/service"
	"github.com/ad-tracker/youtube-channel-analytics-go/internal/validation"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

// AnalyticsService is the service surface the HTTP layer uses.
type AnalyticsService interface {
	GetChannelAnalytics(ctx context.Context, channelID string) (*models.ChannelAnalytics, error)
	SearchChannels(ctx context.Context, query string) ([]models.ChannelSearchResult, error)
	CompareChannels(ctx context.Context, channelID, otherID string) (*models.ChannelComparison, error)
	GetFeaturedChannels(ctx context.Context, channelID string) ([]string, error)
	GetSnapshotHistory(ctx context.Context, channelID string, limit int) ([]models.SnapshotDTO, error)
	GetVideoComments(ctx context.Context, videoID, order string, maxResults int64) ([]models.Comment, error)
	GetQuotaInfo(ctx context.Context) (*models.QuotaInfo, error)
}

// RefreshQueue schedules background recomputation.
type RefreshQueue interface {
	EnqueueChannelRefresh(ctx context.Context, channelID string) (string, error)
}

// AnalyticsHandler handles channel analytics HTTP requests.
type AnalyticsHandler struct {
	service   AnalyticsService
	queue     RefreshQueue
	validator *validation.Validator
}

// NewAnalyticsHandler creates a new AnalyticsHandler instance. queue may be nil.
func NewAnalyticsHandler(svc AnalyticsService, queue RefreshQueue, validator *validation.Validator) *AnalyticsHandler {
	if validator == nil {
		validator = validation.New(0)
	}
	return &AnalyticsHandler{
		service:   svc,
		queue:     queue,
		validator: validator,
	}
}

// GetChannelAnalytics returns metrics, rating and chart series for a channel.
func (h *AnalyticsHandler) GetChannelAnalytics(c *gin.Context) {
	analytics, err := h.service.GetChannelAnalytics(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// SearchChannels looks up channels by free text.
func (h *AnalyticsHandler) SearchChannels(c *gin.Context) {
	query, ok := c.GetQuery("q")
	if !ok || query == "" {
		h.badRequest(c, "query parameter 'q' is required")
		return
	}

	results, err := h.service.SearchChannels(c.Request.Context(), query)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
	})
}

// CompareChannels returns analytics for two channels side by side.
func (h *AnalyticsHandler) CompareChannels(c *gin.Context) {
	comparison, err := h.service.CompareChannels(c.Request.Context(), c.Param("channelId"), c.Param("otherId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// GetFeaturedChannels lists the channels featured on a channel page.
func (h *AnalyticsHandler) GetFeaturedChannels(c *gin.Context) {
	channelID := c.Param("channelId")
	ids, err := h.service.GetFeaturedChannels(c.Request.Context(), channelID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channelId":        channelID,
		"featuredChannels": ids,
	})
}

// GetSnapshotHistory lists stored ratings for a channel, newest first.
func (h *AnalyticsHandler) GetSnapshotHistory(c *gin.Context) {
	channelID := c.Param("channelId")

	limit, err := intQuery(c, "limit")
	if err != nil {
		h.badRequest(c, "limit must be an integer")
		return
	}

	snapshots, err := h.service.GetSnapshotHistory(c.Request.Context(), channelID, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channelId": channelID,
		"snapshots": snapshots,
	})
}

// RefreshChannel enqueues a background recomputation of a channel's analytics.
func (h *AnalyticsHandler) RefreshChannel(c *gin.Context) {
	channelID := c.Param("channelId")

	if err := h.validator.ValidateChannelID(channelID); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Status:    http.StatusServiceUnavailable,
			Error:     "Service Unavailable",
			Message:   "Background refresh is not enabled",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	status := "queued"
	taskID, err := h.queue.EnqueueChannelRefresh(c.Request.Context(), channelID)
	switch {
	case errors.Is(err, queue.ErrRefreshPending):
		status = "pending"
	case err != nil:
		h.handleError(c, &service.ProcessingError{Message: "failed to enqueue refresh", Cause: err})
		return
	}

	c.JSON(http.StatusAccepted, models.RefreshResponseDTO{
		TaskID:    taskID,
		ChannelID: channelID,
		Status:    status,
		QueuedAt:  time.Now().UTC(),
	})
}

// GetVideoComments lists top-level comments on a video.
func (h *AnalyticsHandler) GetVideoComments(c *gin.Context) {
	videoID := c.Param("videoId")

	maxResults, err := intQuery(c, "max")
	if err != nil {
		h.badRequest(c, "max must be an integer")
		return
	}

	comments, err := h.service.GetVideoComments(c.Request.Context(), videoID, c.Query("order"), int64(maxResults))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"videoId":  videoID,
		"comments": comments,
	})
}

// GetQuotaInfo reports today's YouTube API quota usage.
func (h *AnalyticsHandler) GetQuotaInfo(c *gin.Context) {
	info, err := h.service.GetQuotaInfo(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *AnalyticsHandler) badRequest(c *gin.Context, message string) {
	h.handleError(c, &service.ValidationError{Message: message})
}

func (h *AnalyticsHandler) handleError(c *gin.Context, err error) {
	var (
		vErr  *service.ValidationError
		nfErr *service.NotFoundError
		pErr  *service.ProcessingError
	)
	_ = c.Error(err)

	switch {
	case errors.As(err, &vErr):
		logger.Log.Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.As(err, &nfErr):
		writeError(c, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, service.ErrQuotaExhausted):
		logger.Log.Warn("YouTube quota exhausted",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusTooManyRequests, "Too Many Requests", "YouTube API quota exhausted, try again tomorrow")
	case errors.As(err, &pErr):
		logger.Log.Error("Processing error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusInternalServerError, "Internal Server Error", pErr.Message)
	default:
		logger.Log.Error("Unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
	}
}

func writeError(c *gin.Context, status int, title, message string) {
	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     title,
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
