package queue

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

// loggingMiddleware records the outcome and duration of every task.
func loggingMiddleware(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, task)

		fields := []zap.Field{
			zap.String("type", task.Type()),
			zap.Duration("duration", time.Since(start)),
		}
		if id, ok := asynq.GetTaskID(ctx); ok {
			fields = append(fields, zap.String("taskId", id))
		}
		if retried, ok := asynq.GetRetryCount(ctx); ok {
			fields = append(fields, zap.Int("retry", retried))
		}

		if err != nil {
			logger.Log.Warn("Task failed", append(fields, zap.Error(err))...)
			return err
		}
		logger.Log.Debug("Task completed", fields...)
		return nil
	})
}

// logTaskError runs once retries are exhausted or retry was skipped.
func logTaskError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if retried < maxRetry && !isSkipRetry(err) {
		return
	}
	logger.Log.Error("Task abandoned",
		zap.String("type", task.Type()),
		zap.Int("retry", retried),
		zap.Error(err),
	)
}

func isSkipRetry(err error) bool {
	return errors.Is(err, asynq.SkipRetry)
}
