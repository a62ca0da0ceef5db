package model

import "time"

type EventType string

// Domain events published by the main application after a mutation.
const (
	EventTaskAssigned       EventType = "task_assigned"
	EventTaskStatusChanged  EventType = "task_status_changed"
	EventProjectUpdated     EventType = "project_updated"
	EventProjectMemberAdded EventType = "project_member_added"
	EventTeamInvitation     EventType = "team_invitation"
	EventInviteAccepted     EventType = "invite_accepted"
	EventCommentAdded       EventType = "comment_added"
)

var EventTypes = []EventType{
	EventTaskAssigned,
	EventTaskStatusChanged,
	EventProjectUpdated,
	EventProjectMemberAdded,
	EventTeamInvitation,
	EventInviteAccepted,
	EventCommentAdded,
}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Event struct {
	ID            string     `json:"id,omitempty"`
	Type          EventType  `json:"type" binding:"required" validate:"required,eventtype"`
	ProjectID     string     `json:"project_id" binding:"required" validate:"required"`
	TaskID        string     `json:"task_id,omitempty"`
	ActorID       string     `json:"actor_id,omitempty"`
	TargetUserIDs []string   `json:"target_user_ids,omitempty" validate:"omitempty,dive,required"`
	OldStatus     TaskStatus `json:"old_status,omitempty"`
	NewStatus     TaskStatus `json:"new_status,omitempty"`
	Message       string     `json:"message,omitempty" validate:"max=2000"`
	OccurredAt    time.Time  `json:"occurred_at"`
}
