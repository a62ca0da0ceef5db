package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
	"github.com/projecta/notifier/pkg/metrics"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"}, metrics.New("test"))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.migrate(ctx))

	var version int
	require.NoError(t, db.db.GetContext(ctx, &version, "SELECT MAX(version) FROM schema_version"))
	assert.Equal(t, len(migrations), version)
}

func TestProjectRepository(t *testing.T) {
	db := newTestDB(t)
	repos := db.Repositories()
	ctx := context.Background()

	require.NoError(t, db.SaveProject(ctx, &model.Project{
		ID:      "p1",
		Title:   "Website",
		OwnerID: "owner",
		Members: []string{"u1", "u2", "u1"},
		Tasks: []model.Task{
			{ID: "t1", Title: "Design", Status: model.TaskStatusActive, DueDate: date(2026, 10, 18), Assignees: []string{"u1"}},
			{ID: "t2", Title: "Launch", Status: model.TaskStatusPending},
		},
	}))
	require.NoError(t, db.SaveProject(ctx, &model.Project{ID: "p2", Title: "Other", OwnerID: "u3"}))

	projects, err := repos.Projects.ListForUser(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, projects, 1)

	p := projects[0]
	assert.Equal(t, "Website", p.Title)
	assert.Equal(t, []string{"u1", "u2"}, p.Members)
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, "t1", p.Tasks[0].ID)
	assert.Equal(t, []string{"u1"}, p.Tasks[0].Assignees)
	require.NotNil(t, p.Tasks[0].DueDate)
	assert.Equal(t, 18, p.Tasks[0].DueDate.Day())
	assert.Nil(t, p.Tasks[1].DueDate)
	assert.Empty(t, p.Tasks[1].Assignees)

	ids, err := repos.Projects.ListActiveUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "u1", "u2", "u3"}, ids)

	_, err = repos.Projects.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// saving again replaces children
	require.NoError(t, db.SaveProject(ctx, &model.Project{ID: "p1", Title: "Website v2", OwnerID: "owner"}))
	got, err := repos.Projects.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Website v2", got.Title)
	assert.Empty(t, got.Tasks)
	assert.Empty(t, got.Members)
}

func TestNotificationRepository(t *testing.T) {
	db := newTestDB(t)
	repo := db.Repositories().Notifications
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &model.Notification{
			ID:        id,
			UserID:    "u1",
			Type:      model.NotificationTaskDeadline,
			Title:     "Prazo",
			Message:   "msg",
			Priority:  model.PriorityHigh,
			Data:      map[string]interface{}{model.DataTaskID: "t" + id},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.Notification{ID: "other", UserID: "u2", Type: model.NotificationCommentAdded, CreatedAt: base}))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[2].ID)
	assert.Equal(t, "tc", list[0].DataString(model.DataTaskID))

	assert.ErrorIs(t, repo.MarkRead(ctx, "u2", "a"), repository.ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, "u1", "a"))

	n, err := repo.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	deleted, err := repo.DeleteReadBefore(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	assert.ErrorIs(t, repo.Delete(ctx, "u1", "other"), repository.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "u1", "c"))

	list, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSettingsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := db.Repositories().Settings
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	settings := &model.NotificationSettings{
		TaskDeadlines: model.TaskDeadlineSettings{Enabled: true, DaysBefore: 4},
	}
	require.NoError(t, repo.Save(ctx, "u1", settings))

	settings.TaskDeadlines.DaysBefore = 6
	require.NoError(t, repo.Save(ctx, "u1", settings))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, got.TaskDeadlines.Enabled)
	assert.Equal(t, 6, got.TaskDeadlines.DaysBefore)
}
