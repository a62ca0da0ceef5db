package event

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
	"github.com/projecta/notifier/internal/repository/mocks"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyTaskAssignment(ctx context.Context, project *model.Project, task *model.Task, assignees []string, actorID string) {
	m.Called(project.ID, task.ID, assignees, actorID)
}

func (m *mockNotifier) NotifyTaskStatusChanged(ctx context.Context, project *model.Project, task *model.Task, oldStatus, newStatus model.TaskStatus, actorID string) {
	m.Called(project.ID, task.ID, oldStatus, newStatus, actorID)
}

func (m *mockNotifier) NotifyProjectUpdate(ctx context.Context, project *model.Project, actorID, message string) {
	m.Called(project.ID, actorID, message)
}

func (m *mockNotifier) NotifyProjectAssignment(ctx context.Context, project *model.Project, userIDs []string, actorID string) {
	m.Called(project.ID, userIDs, actorID)
}

func (m *mockNotifier) NotifyTeamInvitation(ctx context.Context, project *model.Project, inviteeIDs []string, actorID string) {
	m.Called(project.ID, inviteeIDs, actorID)
}

func (m *mockNotifier) NotifyInviteAccepted(ctx context.Context, project *model.Project, acceptedBy string) {
	m.Called(project.ID, acceptedBy)
}

func (m *mockNotifier) NotifyCommentAdded(ctx context.Context, project *model.Project, task *model.Task, actorID, comment string) {
	m.Called(project.ID, task.ID, actorID, comment)
}

func testProject() *model.Project {
	return &model.Project{
		ID:      "p1",
		Title:   "Website",
		OwnerID: "owner@example.com",
		Members: []string{"ana"},
		Tasks: []model.Task{
			{ID: "t1", Title: "Design", Status: model.TaskStatusActive, Assignees: []string{"ana"}},
		},
	}
}

func newDispatcher(t *testing.T) (Dispatcher, *mocks.ProjectRepository, *mockNotifier) {
	t.Helper()
	projects := &mocks.ProjectRepository{}
	notifier := &mockNotifier{}
	return NewDispatcher(projects, notifier, logger.Nop(), nil), projects, notifier
}

func TestDispatchRoutesEvents(t *testing.T) {
	tests := []struct {
		name   string
		event  model.Event
		method string
		args   []interface{}
	}{
		{
			name:   "task assigned defaults to task assignees",
			event:  model.Event{Type: model.EventTaskAssigned, ProjectID: "p1", TaskID: "t1", ActorID: "owner@example.com"},
			method: "NotifyTaskAssignment",
			args:   []interface{}{"p1", "t1", []string{"ana"}, "owner@example.com"},
		},
		{
			name:   "task assigned with explicit targets",
			event:  model.Event{Type: model.EventTaskAssigned, ProjectID: "p1", TaskID: "t1", TargetUserIDs: []string{"bia"}},
			method: "NotifyTaskAssignment",
			args:   []interface{}{"p1", "t1", []string{"bia"}, ""},
		},
		{
			name: "status change falls back to current status",
			event: model.Event{Type: model.EventTaskStatusChanged, ProjectID: "p1", TaskID: "t1",
				ActorID: "ana", OldStatus: model.TaskStatusPending},
			method: "NotifyTaskStatusChanged",
			args:   []interface{}{"p1", "t1", model.TaskStatusPending, model.TaskStatusActive, "ana"},
		},
		{
			name:   "project updated",
			event:  model.Event{Type: model.EventProjectUpdated, ProjectID: "p1", ActorID: "ana", Message: "novo prazo"},
			method: "NotifyProjectUpdate",
			args:   []interface{}{"p1", "ana", "novo prazo"},
		},
		{
			name:   "member added",
			event:  model.Event{Type: model.EventProjectMemberAdded, ProjectID: "p1", TargetUserIDs: []string{"caio"}, ActorID: "ana"},
			method: "NotifyProjectAssignment",
			args:   []interface{}{"p1", []string{"caio"}, "ana"},
		},
		{
			name:   "team invitation",
			event:  model.Event{Type: model.EventTeamInvitation, ProjectID: "p1", TargetUserIDs: []string{"caio"}, ActorID: "ana"},
			method: "NotifyTeamInvitation",
			args:   []interface{}{"p1", []string{"caio"}, "ana"},
		},
		{
			name:   "invite accepted",
			event:  model.Event{Type: model.EventInviteAccepted, ProjectID: "p1", ActorID: "caio"},
			method: "NotifyInviteAccepted",
			args:   []interface{}{"p1", "caio"},
		},
		{
			name:   "comment added",
			event:  model.Event{Type: model.EventCommentAdded, ProjectID: "p1", TaskID: "t1", ActorID: "ana", Message: "feito"},
			method: "NotifyCommentAdded",
			args:   []interface{}{"p1", "t1", "ana", "feito"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, projects, notifier := newDispatcher(t)
			projects.On("Get", mock.Anything, "p1").Return(testProject(), nil)
			notifier.On(tt.method, tt.args...).Return()

			require.NoError(t, d.Dispatch(context.Background(), &tt.event))
			notifier.AssertExpectations(t)
		})
	}
}

func TestDispatchUnknownProject(t *testing.T) {
	d, projects, notifier := newDispatcher(t)
	projects.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	err := d.Dispatch(context.Background(), &model.Event{Type: model.EventProjectUpdated, ProjectID: "missing"})

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
	notifier.AssertNotCalled(t, "NotifyProjectUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchUnknownTask(t *testing.T) {
	d, projects, _ := newDispatcher(t)
	projects.On("Get", mock.Anything, "p1").Return(testProject(), nil)

	err := d.Dispatch(context.Background(), &model.Event{Type: model.EventCommentAdded, ProjectID: "p1", TaskID: "nope"})
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
}

func TestDispatchTaskEventWithoutTask(t *testing.T) {
	d, projects, _ := newDispatcher(t)
	projects.On("Get", mock.Anything, "p1").Return(testProject(), nil)

	err := d.Dispatch(context.Background(), &model.Event{Type: model.EventTaskAssigned, ProjectID: "p1"})
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}

func TestDispatchInvalidType(t *testing.T) {
	d, projects, _ := newDispatcher(t)

	err := d.Dispatch(context.Background(), &model.Event{Type: "task_deleted", ProjectID: "p1"})
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
	projects.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDispatchStoreFailureIsInternal(t *testing.T) {
	d, projects, _ := newDispatcher(t)
	projects.On("Get", mock.Anything, "p1").Return(nil, errors.New("connection reset"))

	err := d.Dispatch(context.Background(), &model.Event{Type: model.EventProjectUpdated, ProjectID: "p1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
}
