package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/models"
)

const testChannelID = "UCabcdefghijklmnopqrstuv"

type fakeEnqueuer struct {
	tasks  []*asynq.Task
	errs   []error
	calls  int
	closed bool
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: refreshTaskID(testChannelID), Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error {
	f.closed = true
	return nil
}

type fakeInspector struct {
	state     asynq.TaskState
	getErr    error
	deleteErr error
	deleted   []string
	closed    bool
}

func (f *fakeInspector) GetTaskInfo(_, id string) (*asynq.TaskInfo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &asynq.TaskInfo{ID: id, State: f.state}, nil
}

func (f *fakeInspector) DeleteTask(_, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInspector) Close() error {
	f.closed = true
	return nil
}

type fakeRefresher struct {
	calls []string
	err   error
}

func (f *fakeRefresher) RefreshChannel(_ context.Context, channelID string) (*models.ChannelAnalytics, error) {
	f.calls = append(f.calls, channelID)
	if f.err != nil {
		return nil, f.err
	}
	return &models.ChannelAnalytics{Rating: models.RatingDTO{Rating: "B"}}, nil
}

func TestRefreshChannelPayload(t *testing.T) {
	requested := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	p, err := NewRefreshChannelTask(testChannelID, requested)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, p.RequestedAt.Location())

	b, err := p.Marshal()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, testChannelID, raw["channel_id"])
	assert.Equal(t, "2025-03-01T11:00:00Z", raw["requested_at"])

	got, err := UnmarshalRefreshChannelPayload(b)
	require.NoError(t, err)
	assert.True(t, requested.Equal(got.RequestedAt))

	_, err = NewRefreshChannelTask("", requested)
	assert.Error(t, err)

	_, err = UnmarshalRefreshChannelPayload([]byte(`{"requested_at":"2025-03-01T11:00:00Z"}`))
	assert.Error(t, err)

	_, err = UnmarshalRefreshChannelPayload([]byte(`not json`))
	assert.Error(t, err)
}

func TestClient_EnqueueChannelRefresh(t *testing.T) {
	t.Run("enqueues refresh task", func(t *testing.T) {
		fake := &fakeEnqueuer{}
		c := newClient(fake, &fakeInspector{}, 0)
		c.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

		id, err := c.EnqueueChannelRefresh(context.Background(), testChannelID)
		require.NoError(t, err)
		assert.Equal(t, "refresh:"+testChannelID, id)
		assert.Equal(t, DefaultMaxRetry, c.maxRetry)

		require.Len(t, fake.tasks, 1)
		assert.Equal(t, TypeRefreshChannel, fake.tasks[0].Type())
		p, err := UnmarshalRefreshChannelPayload(fake.tasks[0].Payload())
		require.NoError(t, err)
		assert.Equal(t, testChannelID, p.ChannelID)
	})

	t.Run("enqueue failure", func(t *testing.T) {
		c := newClient(&fakeEnqueuer{errs: []error{assert.AnError}}, &fakeInspector{}, 3)

		_, err := c.EnqueueChannelRefresh(context.Background(), testChannelID)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("empty channel", func(t *testing.T) {
		fake := &fakeEnqueuer{}
		c := newClient(fake, &fakeInspector{}, 3)

		_, err := c.EnqueueChannelRefresh(context.Background(), "")
		assert.Error(t, err)
		assert.Empty(t, fake.tasks)
	})

	t.Run("close", func(t *testing.T) {
		fake := &fakeEnqueuer{}
		inspector := &fakeInspector{}
		require.NoError(t, newClient(fake, inspector, 3).Close())
		assert.True(t, fake.closed)
		assert.True(t, inspector.closed)
	})
}

func TestClient_EnqueueChannelRefresh_Conflict(t *testing.T) {
	taskID := "refresh:" + testChannelID

	tests := []struct {
		name        string
		errs        []error
		inspector   *fakeInspector
		wantPending bool
		wantErr     bool
		wantDeleted bool
		wantCalls   int
	}{
		{
			name:        "queued task is pending",
			errs:        []error{asynq.ErrTaskIDConflict},
			inspector:   &fakeInspector{state: asynq.TaskStatePending},
			wantPending: true,
			wantCalls:   1,
		},
		{
			name:        "retrying task is pending",
			errs:        []error{asynq.ErrTaskIDConflict},
			inspector:   &fakeInspector{state: asynq.TaskStateRetry},
			wantPending: true,
			wantCalls:   1,
		},
		{
			name:        "active task is pending",
			errs:        []error{asynq.ErrDuplicateTask},
			inspector:   &fakeInspector{state: asynq.TaskStateActive},
			wantPending: true,
			wantCalls:   1,
		},
		{
			name:        "archived task is replaced",
			errs:        []error{asynq.ErrTaskIDConflict},
			inspector:   &fakeInspector{state: asynq.TaskStateArchived},
			wantDeleted: true,
			wantCalls:   2,
		},
		{
			name:        "completed task is replaced",
			errs:        []error{asynq.ErrTaskIDConflict},
			inspector:   &fakeInspector{state: asynq.TaskStateCompleted},
			wantDeleted: true,
			wantCalls:   2,
		},
		{
			name:      "task gone before lookup",
			errs:      []error{asynq.ErrTaskIDConflict},
			inspector: &fakeInspector{getErr: asynq.ErrTaskNotFound},
			wantCalls: 2,
		},
		{
			name:        "conflict again after clearing",
			errs:        []error{asynq.ErrTaskIDConflict, asynq.ErrTaskIDConflict},
			inspector:   &fakeInspector{state: asynq.TaskStateArchived},
			wantPending: true,
			wantDeleted: true,
			wantCalls:   2,
		},
		{
			name:      "lookup failure",
			errs:      []error{asynq.ErrTaskIDConflict},
			inspector: &fakeInspector{getErr: assert.AnError},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name:      "delete failure",
			errs:      []error{asynq.ErrTaskIDConflict},
			inspector: &fakeInspector{state: asynq.TaskStateArchived, deleteErr: assert.AnError},
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEnqueuer{errs: tt.errs}
			c := newClient(fake, tt.inspector, 3)

			id, err := c.EnqueueChannelRefresh(context.Background(), testChannelID)
			switch {
			case tt.wantErr:
				assert.ErrorIs(t, err, assert.AnError)
				assert.Empty(t, id)
			case tt.wantPending:
				assert.ErrorIs(t, err, ErrRefreshPending)
				assert.Equal(t, taskID, id)
			default:
				require.NoError(t, err)
				assert.Equal(t, taskID, id)
				assert.Len(t, fake.tasks, 1)
			}

			assert.Equal(t, tt.wantCalls, fake.calls)
			if tt.wantDeleted {
				assert.Equal(t, []string{taskID}, tt.inspector.deleted)
			} else {
				assert.Empty(t, tt.inspector.deleted)
			}
		})
	}
}

func TestClient_EnqueueChannelRefresh_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewClient(mr.Addr(), "", 0, 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = inspector.Close() })

	ctx := context.Background()

	id, err := c.EnqueueChannelRefresh(ctx, testChannelID)
	require.NoError(t, err)
	assert.Equal(t, "refresh:"+testChannelID, id)

	_, err = c.EnqueueChannelRefresh(ctx, testChannelID)
	assert.ErrorIs(t, err, ErrRefreshPending)

	// A task that failed without retry lands in the archive.
	require.NoError(t, inspector.ArchiveTask(DefaultQueue, id))

	again, err := c.EnqueueChannelRefresh(ctx, testChannelID)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	info, err := inspector.GetTaskInfo(DefaultQueue, id)
	require.NoError(t, err)
	assert.Equal(t, asynq.TaskStatePending, info.State)
}

func refreshTask(t *testing.T, channelID string) *asynq.Task {
	t.Helper()
	p, err := NewRefreshChannelTask(channelID, time.Now())
	require.NoError(t, err)
	b, err := p.Marshal()
	require.NoError(t, err)
	return asynq.NewTask(TypeRefreshChannel, b)
}

func TestRefreshHandler_ProcessTask(t *testing.T) {
	errPermanent := errors.New("channel not found")

	tests := []struct {
		name          string
		task          func(t *testing.T) *asynq.Task
		refreshErr    error
		wantErr       bool
		wantSkipRetry bool
		wantCalls     int
	}{
		{
			name:      "refreshes channel",
			task:      func(t *testing.T) *asynq.Task { return refreshTask(t, testChannelID) },
			wantCalls: 1,
		},
		{
			name:          "bad payload skips retry",
			task:          func(*testing.T) *asynq.Task { return asynq.NewTask(TypeRefreshChannel, []byte("{")) },
			wantErr:       true,
			wantSkipRetry: true,
		},
		{
			name:       "transient failure retries",
			task:       func(t *testing.T) *asynq.Task { return refreshTask(t, testChannelID) },
			refreshErr: assert.AnError,
			wantErr:    true,
			wantCalls:  1,
		},
		{
			name:          "permanent failure skips retry",
			task:          func(t *testing.T) *asynq.Task { return refreshTask(t, testChannelID) },
			refreshErr:    errPermanent,
			wantErr:       true,
			wantSkipRetry: true,
			wantCalls:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresher := &fakeRefresher{err: tt.refreshErr}
			h := NewRefreshHandler(refresher, func(err error) bool { return !errors.Is(err, errPermanent) })

			err := h.ProcessTask(context.Background(), tt.task(t))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantSkipRetry, isSkipRetry(err))
			assert.Len(t, refresher.calls, tt.wantCalls)
		})
	}
}

func TestNewRefreshHandler_DefaultRetriesEverything(t *testing.T) {
	h := NewRefreshHandler(&fakeRefresher{err: assert.AnError}, nil)
	err := h.ProcessTask(context.Background(), refreshTask(t, testChannelID))
	require.Error(t, err)
	assert.False(t, isSkipRetry(err))
}

func TestServeMux_RoutesRefreshTask(t *testing.T) {
	refresher := &fakeRefresher{}
	mux := NewServeMux(NewRefreshHandler(refresher, nil))

	require.NoError(t, mux.ProcessTask(context.Background(), refreshTask(t, testChannelID)))
	assert.Equal(t, []string{testChannelID}, refresher.calls)

	assert.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask("unknown", nil)))
}
