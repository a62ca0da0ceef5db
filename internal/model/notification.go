package model

import (
	"time"
)

type NotificationType string

const (
	NotificationTaskDeadline      NotificationType = "task_deadline"
	NotificationOverdueTask       NotificationType = "overdue_task"
	NotificationTaskAssignment    NotificationType = "task_assignment"
	NotificationTaskStatusChanged NotificationType = "task_status_changed"
	NotificationProjectUpdate     NotificationType = "project_update"
	NotificationProjectAssignment NotificationType = "project_assignment"
	NotificationTeamInvitation    NotificationType = "team_invitation"
	NotificationInviteAccepted    NotificationType = "invite_accepted"
	NotificationCommentAdded      NotificationType = "comment_added"
)

// NotificationTypes lists every type the service can emit.
var NotificationTypes = []NotificationType{
	NotificationTaskDeadline,
	NotificationOverdueTask,
	NotificationTaskAssignment,
	NotificationTaskStatusChanged,
	NotificationProjectUpdate,
	NotificationProjectAssignment,
	NotificationTeamInvitation,
	NotificationInviteAccepted,
	NotificationCommentAdded,
}

func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorities = map[NotificationType]Priority{
	NotificationTaskDeadline:      PriorityHigh,
	NotificationOverdueTask:       PriorityHigh,
	NotificationTaskAssignment:    PriorityMedium,
	NotificationTaskStatusChanged: PriorityMedium,
	NotificationInviteAccepted:    PriorityMedium,
	NotificationTeamInvitation:    PriorityMedium,
	NotificationProjectAssignment: PriorityMedium,
	NotificationProjectUpdate:     PriorityLow,
	NotificationCommentAdded:      PriorityLow,
}

// PriorityFor returns the fixed priority of a notification type.
func PriorityFor(t NotificationType) Priority {
	if p, ok := priorities[t]; ok {
		return p
	}
	return PriorityLow
}

// Notification is immutable once created, except for IsRead.
type Notification struct {
	ID        string                 `json:"id" db:"id" firestore:"id"`
	UserID    string                 `json:"user_id" db:"user_id" firestore:"user_id"`
	Type      NotificationType       `json:"type" db:"type" firestore:"type"`
	Title     string                 `json:"title" db:"title" firestore:"title"`
	Message   string                 `json:"message" db:"message" firestore:"message"`
	Priority  Priority               `json:"priority" db:"priority" firestore:"priority"`
	Data      map[string]interface{} `json:"data,omitempty" db:"-" firestore:"data,omitempty"`
	IsRead    bool                   `json:"is_read" db:"is_read" firestore:"is_read"`
	CreatedAt time.Time              `json:"created_at" db:"created_at" firestore:"created_at"`
}

// Common keys of Notification.Data
const (
	DataProjectID    = "project_id"
	DataProjectTitle = "project_title"
	DataTaskID       = "task_id"
	DataTaskTitle    = "task_title"
	DataActorID      = "actor_id"
	DataDaysLeft     = "days_left"
	DataDaysOverdue  = "days_overdue"
	DataOldStatus    = "old_status"
	DataNewStatus    = "new_status"
)

// DataString reads a string value from Data.
func (n *Notification) DataString(key string) string {
	if n.Data == nil {
		return ""
	}
	if s, ok := n.Data[key].(string); ok {
		return s
	}
	return ""
}

type NotificationFilter struct {
	Type   NotificationType `json:"type,omitempty" form:"type"`
	Unread bool             `json:"unread,omitempty" form:"unread"`
	Limit  int              `json:"limit,omitempty" form:"limit" validate:"omitempty,min=0,max=500"`
}

type NotificationStats struct {
	Total  int                      `json:"total"`
	Unread int                      `json:"unread"`
	ByType map[NotificationType]int `json:"by_type"`
}

// NotificationGroup collapses same-type notifications about one subject on one day.
type NotificationGroup struct {
	Key           string           `json:"key"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Priority      Priority         `json:"priority"`
	Count         int              `json:"count"`
	Unread        int              `json:"unread"`
	LatestAt      time.Time        `json:"latest_at"`
	Notifications []*Notification  `json:"notifications"`
}
