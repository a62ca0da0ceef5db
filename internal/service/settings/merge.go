package settings

import "github.com/projecta/notifier/internal/model"

// Merge applies patch on top of base and returns a new object. Categories
// absent from the patch keep their values; within a present category only the
// set fields change.
func Merge(base *model.NotificationSettings, patch *model.SettingsPatch) *model.NotificationSettings {
	out := copyOf(base)
	if patch == nil {
		return out
	}

	if p := patch.TaskDeadlines; p != nil {
		setBool(&out.TaskDeadlines.Enabled, p.Enabled)
		if p.DaysBefore != nil {
			out.TaskDeadlines.DaysBefore = *p.DaysBefore
		}
	}
	if p := patch.OverdueReminders; p != nil {
		setBool(&out.OverdueReminders.Enabled, p.Enabled)
		if p.Frequency != nil {
			out.OverdueReminders.Frequency = *p.Frequency
		}
	}
	if p := patch.TaskStatusChanges; p != nil {
		setBool(&out.TaskStatusChanges.Enabled, p.Enabled)
		setBool(&out.TaskStatusChanges.OnlyMyTasks, p.OnlyMyTasks)
	}
	if p := patch.TaskAssignments; p != nil {
		setBool(&out.TaskAssignments.Enabled, p.Enabled)
	}
	if p := patch.ProjectAssignments; p != nil {
		setBool(&out.ProjectAssignments.Enabled, p.Enabled)
	}
	if p := patch.QuietHours; p != nil {
		setBool(&out.QuietHours.Enabled, p.Enabled)
		setString(&out.QuietHours.Start, p.Start)
		setString(&out.QuietHours.End, p.End)
	}
	if p := patch.EmailDelivery; p != nil {
		setBool(&out.EmailDelivery.Enabled, p.Enabled)
	}
	return out
}

// fillMissing completes a stored object written by an older version that
// lacks some fields.
func fillMissing(stored *model.NotificationSettings) *model.NotificationSettings {
	out := copyOf(stored)
	def := Defaults()
	if out.OverdueReminders.Frequency == "" {
		out.OverdueReminders.Frequency = def.OverdueReminders.Frequency
	}
	if out.QuietHours.Start == "" {
		out.QuietHours.Start = def.QuietHours.Start
	}
	if out.QuietHours.End == "" {
		out.QuietHours.End = def.QuietHours.End
	}
	return out
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
