package event

import (
	"context"

	"github.com/projecta/notifier/internal/model"
)

// Notifier is the part of the notification service events fan out to.
type Notifier interface {
	NotifyTaskAssignment(ctx context.Context, project *model.Project, task *model.Task, assignees []string, actorID string)
	NotifyTaskStatusChanged(ctx context.Context, project *model.Project, task *model.Task, oldStatus, newStatus model.TaskStatus, actorID string)
	NotifyProjectUpdate(ctx context.Context, project *model.Project, actorID, message string)
	NotifyProjectAssignment(ctx context.Context, project *model.Project, userIDs []string, actorID string)
	NotifyTeamInvitation(ctx context.Context, project *model.Project, inviteeIDs []string, actorID string)
	NotifyInviteAccepted(ctx context.Context, project *model.Project, acceptedBy string)
	NotifyCommentAdded(ctx context.Context, project *model.Project, task *model.Task, actorID, comment string)
}

// Dispatcher turns a domain event into notifications. Returned errors describe
// the event itself (unknown project, missing task); notification failures are
// never returned.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *model.Event) error
}
