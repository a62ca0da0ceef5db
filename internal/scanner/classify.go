// Package scanner decides which tasks deserve a deadline or overdue reminder
// and drives the notifier for one user at a time.
package scanner

import (
	"time"

	"github.com/projecta/notifier/internal/model"
)

type Kind int

const (
	KindNone Kind = iota
	KindApproaching
	KindOverdue
)

func (k Kind) String() string {
	switch k {
	case KindApproaching:
		return "approaching"
	case KindOverdue:
		return "overdue"
	default:
		return "none"
	}
}

// DefaultOverdueMilestones are the days-overdue counts that trigger a reminder.
var DefaultOverdueMilestones = []int{1, 3, 7, 14, 30}

type Decision struct {
	Kind        Kind
	DaysLeft    int
	DaysOverdue int
}

// Classify inspects one task against today's date. today is read in its own
// location; the due date's year, month and day are taken as written.
func Classify(task *model.Task, today time.Time, settings *model.NotificationSettings, milestones []int) Decision {
	if task == nil || task.Status == model.TaskStatusCompleted || task.DueDate == nil {
		return Decision{}
	}

	diff := DaysUntil(today, *task.DueDate)

	if diff < 0 {
		overdue := -diff
		if settings.OverdueReminders.Enabled && isMilestone(overdue, milestones) {
			return Decision{Kind: KindOverdue, DaysOverdue: overdue}
		}
		return Decision{}
	}

	if settings.TaskDeadlines.Enabled && diff <= settings.TaskDeadlines.DaysBefore {
		return Decision{Kind: KindApproaching, DaysLeft: diff}
	}
	return Decision{}
}

// DaysUntil counts whole calendar days from today to due. Both are reduced to
// their date first, so time of day and DST shifts never matter.
func DaysUntil(today, due time.Time) int {
	from := civilDate(today)
	to := civilDate(due)
	return int(to.Sub(from).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isMilestone(days int, milestones []int) bool {
	for _, m := range milestones {
		if m == days {
			return true
		}
	}
	return false
}
