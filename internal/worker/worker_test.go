package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/queue"
	"github.com/projecta/notifier/internal/repository/memory"
	"github.com/projecta/notifier/internal/repository/mocks"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
)

func TestCleanupDeletesOnlyOldReadNotifications(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	seed := []*model.Notification{
		{ID: "old-read", UserID: "u1", IsRead: true, CreatedAt: now.AddDate(0, 0, -40)},
		{ID: "old-unread", UserID: "u1", CreatedAt: now.AddDate(0, 0, -40)},
		{ID: "new-read", UserID: "u1", IsRead: true, CreatedAt: now.AddDate(0, 0, -2)},
	}
	for _, n := range seed {
		require.NoError(t, repos.Notifications.Create(ctx, n))
	}

	w := NewCleanupWorker(repos.Notifications, 30, time.Hour, logger.Nop(), nil)
	w.now = func() time.Time { return now }

	deleted, err := w.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left, err := repos.Notifications.ListByUser(ctx, "u1")
	require.NoError(t, err)
	ids := make([]string, 0, len(left))
	for _, n := range left {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"old-unread", "new-read"}, ids)
}

func TestCleanupReportsStoreErrors(t *testing.T) {
	repo := &mocks.NotificationRepository{}
	repo.On("DeleteReadBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("timeout"))

	w := NewCleanupWorker(repo, 30, time.Hour, logger.Nop(), nil)
	_, err := w.Cleanup(context.Background())
	assert.Error(t, err)
}

type fakeDispatcher struct {
	err    error
	events []*model.Event
}

func (f *fakeDispatcher) Dispatch(_ context.Context, e *model.Event) error {
	f.events = append(f.events, e)
	return f.err
}

func eventTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := queue.NewEventTask(&model.Event{Type: model.EventProjectUpdated, ProjectID: "p1", ActorID: "ana"})
	require.NoError(t, err)
	return task
}

func TestHandleEventDispatches(t *testing.T) {
	d := &fakeDispatcher{}
	w := &EventWorker{dispatcher: d, logger: logger.Nop()}

	require.NoError(t, w.HandleEvent(context.Background(), eventTask(t)))
	require.Len(t, d.events, 1)
	assert.Equal(t, "p1", d.events[0].ProjectID)
}

func TestHandleEventSkipsRetryForBadEvents(t *testing.T) {
	d := &fakeDispatcher{err: apperrors.NotFound("project", nil)}
	w := &EventWorker{dispatcher: d, logger: logger.Nop()}

	err := w.HandleEvent(context.Background(), eventTask(t))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = w.HandleEvent(context.Background(), asynq.NewTask(queue.TypeDomainEvent, []byte("not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleEventRetriesStoreFailures(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("connection refused")}
	w := &EventWorker{dispatcher: d, logger: logger.Nop()}

	err := w.HandleEvent(context.Background(), eventTask(t))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
