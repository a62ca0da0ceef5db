package notification

import (
	"context"
	"strings"

	"github.com/projecta/notifier/internal/model"
)

// suppression reasons
const (
	reasonDisabled = "settings_disabled"
	reasonNotMine  = "not_my_task"
)

func (s *service) NotifyTaskDeadline(ctx context.Context, userID string, project *model.Project, task *model.Task, daysLeft int) {
	if !s.settings.GetSettings(ctx, userID).TaskDeadlines.Enabled {
		s.suppressed(model.NotificationTaskDeadline, reasonDisabled)
		return
	}

	title, message := deadlineText(project, task, daysLeft)
	s.emit(ctx, &model.Notification{
		UserID:  userID,
		Type:    model.NotificationTaskDeadline,
		Title:   title,
		Message: message,
		Data:    taskData(project, task, "", map[string]interface{}{model.DataDaysLeft: daysLeft}),
	})
}

func (s *service) NotifyOverdueTask(ctx context.Context, userID string, project *model.Project, task *model.Task, daysOverdue int) {
	if !s.settings.GetSettings(ctx, userID).OverdueReminders.Enabled {
		s.suppressed(model.NotificationOverdueTask, reasonDisabled)
		return
	}

	title, message := overdueText(project, task, daysOverdue)
	s.emit(ctx, &model.Notification{
		UserID:  userID,
		Type:    model.NotificationOverdueTask,
		Title:   title,
		Message: message,
		Data:    taskData(project, task, "", map[string]interface{}{model.DataDaysOverdue: daysOverdue}),
	})
}

func (s *service) NotifyTaskAssignment(ctx context.Context, project *model.Project, task *model.Task, assignees []string, actorID string) {
	title, message := assignmentText(project, task)
	for _, userID := range Recipients(actorID, assignees) {
		if !s.settings.GetSettings(ctx, userID).TaskAssignments.Enabled {
			s.suppressed(model.NotificationTaskAssignment, reasonDisabled)
			continue
		}
		s.emit(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.NotificationTaskAssignment,
			Title:   title,
			Message: message,
			Data:    taskData(project, task, actorID, nil),
		})
	}
}

func (s *service) NotifyTaskStatusChanged(ctx context.Context, project *model.Project, task *model.Task, oldStatus, newStatus model.TaskStatus, actorID string) {
	title, message := statusText(project, task, oldStatus, newStatus)
	for _, userID := range Recipients(actorID, project.Team(), task.Assignees) {
		st := s.settings.GetSettings(ctx, userID).TaskStatusChanges
		if !st.Enabled {
			s.suppressed(model.NotificationTaskStatusChanged, reasonDisabled)
			continue
		}
		if st.OnlyMyTasks && !task.IsAssignee(userID) {
			s.suppressed(model.NotificationTaskStatusChanged, reasonNotMine)
			continue
		}
		s.emit(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.NotificationTaskStatusChanged,
			Title:   title,
			Message: message,
			Data: taskData(project, task, actorID, map[string]interface{}{
				model.DataOldStatus: string(oldStatus),
				model.DataNewStatus: string(newStatus),
			}),
		})
	}
}

func (s *service) NotifyProjectUpdate(ctx context.Context, project *model.Project, actorID, message string) {
	title, text := projectUpdateText(project, message)
	for _, userID := range Recipients(actorID, project.Team()) {
		s.emit(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.NotificationProjectUpdate,
			Title:   title,
			Message: text,
			Data:    projectData(project, actorID),
		})
	}
}

func (s *service) NotifyProjectAssignment(ctx context.Context, project *model.Project, userIDs []string, actorID string) {
	title, message := projectAssignmentText(project)
	for _, userID := range Recipients(actorID, userIDs) {
		if !s.settings.GetSettings(ctx, userID).ProjectAssignments.Enabled {
			s.suppressed(model.NotificationProjectAssignment, reasonDisabled)
			continue
		}
		s.emit(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.NotificationProjectAssignment,
			Title:   title,
			Message: message,
			Data:    projectData(project, actorID),
		})
	}
}

func (s *service) NotifyTeamInvitation(ctx context.Context, project *model.Project, inviteeIDs []string, actorID string) {
	title, message := invitationText(project)
	for _, userID := range Recipients(actorID, inviteeIDs) {
		s.emit(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.NotificationTeamInvitation,
			Title:   title,
			Message: message,
			Data:    projectData(project, actorID),
		})
	}
}

func (s *service) NotifyInviteAccepted(ctx context.Context, project *model.Project, acceptedBy string) {
	title, message := inviteAcceptedText(project, acceptedBy)
	for _, userID := range Recipients(acceptedBy, []string{project.OwnerID}) {
		s.emit(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.NotificationInviteAccepted,
			Title:   title,
			Message: message,
			Data:    projectData(project, acceptedBy),
		})
	}
}

func (s *service) NotifyCommentAdded(ctx context.Context, project *model.Project, task *model.Task, actorID, comment string) {
	title, message := commentText(project, task, comment)
	for _, userID := range Recipients(actorID, project.Team(), task.Assignees) {
		s.emit(ctx, &model.Notification{
			UserID:  userID,
			Type:    model.NotificationCommentAdded,
			Title:   title,
			Message: message,
			Data:    taskData(project, task, actorID, nil),
		})
	}
}

// emit is the silent wrapper around CreateNotification.
func (s *service) emit(ctx context.Context, n *model.Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Recovered from panic while creating notification", "type", string(n.Type), "panic", r)
		}
	}()

	if _, err := s.CreateNotification(ctx, n); err != nil {
		s.logger.Error(err, "Failed to create notification",
			"type", string(n.Type),
			"user_id", n.UserID)
	}
}

func (s *service) suppressed(t model.NotificationType, reason string) {
	s.metrics.NotificationsSuppressed.WithLabelValues(string(t), reason).Inc()
}

// Recipients unions the groups, drops the actor and keeps one entry per
// identity. Identities compare trimmed and case-folded; the first spelling seen wins.
func Recipients(actorID string, groups ...[]string) []string {
	actor := model.NormalizeIdentity(actorID)
	seen := make(map[string]bool)
	var out []string
	for _, group := range groups {
		for _, id := range group {
			key := model.NormalizeIdentity(id)
			if key == "" || key == actor || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(id))
		}
	}
	return out
}

func projectData(project *model.Project, actorID string) map[string]interface{} {
	data := map[string]interface{}{
		model.DataProjectID:    project.ID,
		model.DataProjectTitle: project.Title,
	}
	if actorID != "" {
		data[model.DataActorID] = actorID
	}
	return data
}

func taskData(project *model.Project, task *model.Task, actorID string, extra map[string]interface{}) map[string]interface{} {
	data := projectData(project, actorID)
	data[model.DataTaskID] = task.ID
	data[model.DataTaskTitle] = task.Title
	for k, v := range extra {
		data[k] = v
	}
	return data
}
