package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

// Refresher recomputes a channel's analytics, bypassing any cached copy.
type Refresher interface {
	RefreshChannel(ctx context.Context, channelID string) (*models.ChannelAnalytics, error)
}

// RefreshHandler handles channel refresh tasks
type RefreshHandler struct {
	refresher Refresher
	retryable func(error) bool
}

// NewRefreshHandler creates a new refresh task handler. retryable decides
// whether a failed refresh is worth another attempt; nil retries everything.
func NewRefreshHandler(refresher Refresher, retryable func(error) bool) *RefreshHandler {
	if retryable == nil {
		retryable = func(error) bool { return true }
	}
	return &RefreshHandler{refresher: refresher, retryable: retryable}
}

// ProcessTask implements asynq.Handler
func (h *RefreshHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := UnmarshalRefreshChannelPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	analytics, err := h.refresher.RefreshChannel(ctx, payload.ChannelID)
	if err != nil {
		if !h.retryable(err) {
			return fmt.Errorf("refresh channel %s: %v: %w", payload.ChannelID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("refresh channel %s: %w", payload.ChannelID, err)
	}

	logger.Log.Info("Refreshed channel analytics",
		zap.String("channelId", payload.ChannelID),
		zap.String("rating", analytics.Rating.Rating),
		zap.Time("requestedAt", payload.RequestedAt),
	)
	return nil
}

// Server wraps asynq server for processing tasks
type Server struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
}

// NewServer creates a new task processing server
func NewServer(redisAddr, password string, db, concurrency int, handler *RefreshHandler) (*Server, error) {
	redisOpt, err := RedisOpt(redisAddr, password, db)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				DefaultQueue: 10,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(logTaskError),
		},
	)

	return &Server{
		asynqServer: srv,
		mux:         NewServeMux(handler),
	}, nil
}

// NewServeMux registers the task handlers with logging middleware.
func NewServeMux(handler *RefreshHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(loggingMiddleware)
	mux.Handle(TypeRefreshChannel, handler)
	return mux
}

// Start starts the server
func (s *Server) Start() error {
	logger.Log.Info("Starting task processing server")
	return s.asynqServer.Start(s.mux)
}

// Stop gracefully stops the server
func (s *Server) Stop() {
	logger.Log.Info("Shutting down task processing server")
	s.asynqServer.Shutdown()
}
