package model

import "time"

type OverdueFrequency string

const (
	FrequencyDaily  OverdueFrequency = "daily"
	FrequencyWeekly OverdueFrequency = "weekly"
)

type TaskDeadlineSettings struct {
	Enabled    bool `json:"enabled" firestore:"enabled"`
	DaysBefore int  `json:"days_before" firestore:"days_before" validate:"min=0,max=30"`
}

type OverdueReminderSettings struct {
	Enabled   bool             `json:"enabled" firestore:"enabled"`
	Frequency OverdueFrequency `json:"frequency" firestore:"frequency" validate:"oneof=daily weekly"`
}

type TaskStatusChangeSettings struct {
	Enabled     bool `json:"enabled" firestore:"enabled"`
	OnlyMyTasks bool `json:"only_my_tasks" firestore:"only_my_tasks"`
}

type ToggleSettings struct {
	Enabled bool `json:"enabled" firestore:"enabled"`
}

type QuietHoursSettings struct {
	Enabled bool   `json:"enabled" firestore:"enabled"`
	Start   string `json:"start" firestore:"start" validate:"hhmm"`
	End     string `json:"end" firestore:"end" validate:"hhmm"`
}

// NotificationSettings always resolves to a complete object.
type NotificationSettings struct {
	TaskDeadlines      TaskDeadlineSettings     `json:"task_deadlines" firestore:"task_deadlines"`
	OverdueReminders   OverdueReminderSettings  `json:"overdue_reminders" firestore:"overdue_reminders"`
	TaskStatusChanges  TaskStatusChangeSettings `json:"task_status_changes" firestore:"task_status_changes"`
	TaskAssignments    ToggleSettings           `json:"task_assignments" firestore:"task_assignments"`
	ProjectAssignments ToggleSettings           `json:"project_assignments" firestore:"project_assignments"`
	QuietHours         QuietHoursSettings       `json:"quiet_hours" firestore:"quiet_hours"`
	EmailDelivery      ToggleSettings           `json:"email_delivery" firestore:"email_delivery"`
	UpdatedAt          time.Time                `json:"updated_at" firestore:"updated_at"`
}

// SettingsPatch is a partial update. Nil fields keep their current value.
type SettingsPatch struct {
	TaskDeadlines      *TaskDeadlinePatch     `json:"task_deadlines,omitempty"`
	OverdueReminders   *OverdueReminderPatch  `json:"overdue_reminders,omitempty"`
	TaskStatusChanges  *TaskStatusChangePatch `json:"task_status_changes,omitempty"`
	TaskAssignments    *TogglePatch           `json:"task_assignments,omitempty"`
	ProjectAssignments *TogglePatch           `json:"project_assignments,omitempty"`
	QuietHours         *QuietHoursPatch       `json:"quiet_hours,omitempty"`
	EmailDelivery      *TogglePatch           `json:"email_delivery,omitempty"`
}

type TaskDeadlinePatch struct {
	Enabled    *bool `json:"enabled,omitempty"`
	DaysBefore *int  `json:"days_before,omitempty"`
}

type OverdueReminderPatch struct {
	Enabled   *bool             `json:"enabled,omitempty"`
	Frequency *OverdueFrequency `json:"frequency,omitempty"`
}

type TaskStatusChangePatch struct {
	Enabled     *bool `json:"enabled,omitempty"`
	OnlyMyTasks *bool `json:"only_my_tasks,omitempty"`
}

type TogglePatch struct {
	Enabled *bool `json:"enabled,omitempty"`
}

type QuietHoursPatch struct {
	Enabled *bool   `json:"enabled,omitempty"`
	Start   *string `json:"start,omitempty"`
	End     *string `json:"end,omitempty"`
}
