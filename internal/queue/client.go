package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-analytics-go/pkg/logger"
)

const (
	// DefaultQueue is the asynq queue refresh tasks are placed on.
	DefaultQueue = "default"
	// DefaultMaxRetry applies when the configured retry count is not positive.
	DefaultMaxRetry = 3
	// TaskTimeout bounds a single refresh attempt.
	TaskTimeout = 2 * time.Minute
)

// ErrRefreshPending is returned when a refresh for the channel is already queued.
var ErrRefreshPending = errors.New("refresh already pending")

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// taskInspector looks up and removes tasks that still hold a channel's task ID.
type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

// Client wraps asynq client for enqueueing tasks
type Client struct {
	asynqClient enqueuer
	inspector   taskInspector
	maxRetry    int
	now         func() time.Time
}

// NewClient creates a new queue client. redisAddr is host:port or a redis:// URL.
func NewClient(redisAddr, password string, db, maxRetry int) (*Client, error) {
	redisOpt, err := RedisOpt(redisAddr, password, db)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return newClient(asynq.NewClient(redisOpt), asynq.NewInspector(redisOpt), maxRetry), nil
}

func newClient(e enqueuer, i taskInspector, maxRetry int) *Client {
	if maxRetry <= 0 {
		maxRetry = DefaultMaxRetry
	}
	return &Client{asynqClient: e, inspector: i, maxRetry: maxRetry, now: time.Now}
}

// Close closes the client connection
func (c *Client) Close() error {
	return errors.Join(c.asynqClient.Close(), c.inspector.Close())
}

// EnqueueChannelRefresh enqueues a refresh of a channel's analytics and returns the task ID.
func (c *Client) EnqueueChannelRefresh(ctx context.Context, channelID string) (string, error) {
	payload, err := NewRefreshChannelTask(channelID, c.now())
	if err != nil {
		return "", fmt.Errorf("failed to create task payload: %w", err)
	}

	payloadBytes, err := payload.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeRefreshChannel, payloadBytes)
	taskID := refreshTaskID(channelID)

	info, err := c.enqueue(ctx, task, taskID)
	if isConflict(err) {
		// An archived or completed task keeps its ID until asynq trims it.
		finished, clearErr := c.clearFinished(taskID)
		if clearErr != nil {
			return "", clearErr
		}
		if !finished {
			return taskID, ErrRefreshPending
		}
		info, err = c.enqueue(ctx, task, taskID)
	}
	if isConflict(err) {
		return taskID, ErrRefreshPending
	}
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	logger.Log.Info("Enqueued channel refresh",
		zap.String("channelId", channelID),
		zap.String("taskId", info.ID),
	)

	return info.ID, nil
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, taskID string) (*asynq.TaskInfo, error) {
	return c.asynqClient.EnqueueContext(ctx, task,
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(TaskTimeout),
		asynq.Queue(DefaultQueue),
		asynq.TaskID(taskID),
	)
}

// clearFinished deletes the task holding taskID when it will never run again.
// It reports whether the ID is free for a new task.
func (c *Client) clearFinished(taskID string) (bool, error) {
	info, err := c.inspector.GetTaskInfo(DefaultQueue, taskID)
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect task %s: %w", taskID, err)
	}

	switch info.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
	default:
		return false, nil
	}

	if err := c.inspector.DeleteTask(DefaultQueue, taskID); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, fmt.Errorf("failed to delete finished task %s: %w", taskID, err)
	}

	logger.Log.Info("Cleared finished channel refresh",
		zap.String("taskId", taskID),
		zap.String("state", info.State.String()),
	)
	return true, nil
}

func isConflict(err error) bool {
	return errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask)
}

func refreshTaskID(channelID string) string {
	return "refresh:" + channelID
}
