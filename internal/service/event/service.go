package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/metrics"
)

type dispatcher struct {
	projects repository.ProjectRepository
	notifier Notifier
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewDispatcher(projects repository.ProjectRepository, notifier Notifier, log *logger.Logger, m *metrics.Metrics) Dispatcher {
	if m == nil {
		m = metrics.New("events")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &dispatcher{
		projects: projects,
		notifier: notifier,
		logger:   log,
		metrics:  m,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, event *model.Event) (err error) {
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		d.metrics.EventsProcessed.WithLabelValues(string(event.Type), status).Inc()
	}()

	if !event.Type.Valid() {
		return apperrors.BadRequest(fmt.Sprintf("unknown event type %q", event.Type), nil)
	}

	project, err := d.projects.Get(ctx, event.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("project", err)
		}
		return fmt.Errorf("failed to load project %s: %w", event.ProjectID, err)
	}

	var task *model.Task
	if event.TaskID != "" {
		t, ok := project.Task(event.TaskID)
		if !ok {
			return apperrors.NotFound("task", repository.ErrNotFound)
		}
		task = t
	}

	switch event.Type {
	case model.EventTaskAssigned:
		if task == nil {
			return errTaskRequired(event.Type)
		}
		assignees := event.TargetUserIDs
		if len(assignees) == 0 {
			assignees = task.Assignees
		}
		d.notifier.NotifyTaskAssignment(ctx, project, task, assignees, event.ActorID)

	case model.EventTaskStatusChanged:
		if task == nil {
			return errTaskRequired(event.Type)
		}
		newStatus := event.NewStatus
		if newStatus == "" {
			newStatus = task.Status
		}
		d.notifier.NotifyTaskStatusChanged(ctx, project, task, event.OldStatus, newStatus, event.ActorID)

	case model.EventProjectUpdated:
		d.notifier.NotifyProjectUpdate(ctx, project, event.ActorID, event.Message)

	case model.EventProjectMemberAdded:
		d.notifier.NotifyProjectAssignment(ctx, project, event.TargetUserIDs, event.ActorID)

	case model.EventTeamInvitation:
		d.notifier.NotifyTeamInvitation(ctx, project, event.TargetUserIDs, event.ActorID)

	case model.EventInviteAccepted:
		d.notifier.NotifyInviteAccepted(ctx, project, event.ActorID)

	case model.EventCommentAdded:
		if task == nil {
			return errTaskRequired(event.Type)
		}
		d.notifier.NotifyCommentAdded(ctx, project, task, event.ActorID, event.Message)
	}

	d.logger.Debug("Event dispatched",
		"event_type", string(event.Type),
		"project_id", event.ProjectID,
		"task_id", event.TaskID)
	return nil
}

func errTaskRequired(t model.EventType) error {
	return apperrors.BadRequest(fmt.Sprintf("%s events need a task_id", t), nil)
}
