package settings

import (
	"time"

	"github.com/projecta/notifier/internal/model"
)

// InQuietHours reports whether now falls inside the user's quiet window.
// A window whose end is before its start wraps past midnight.
func InQuietHours(s *model.NotificationSettings, now time.Time) bool {
	if s == nil || !s.QuietHours.Enabled {
		return false
	}
	start, ok1 := minuteOfDay(s.QuietHours.Start)
	end, ok2 := minuteOfDay(s.QuietHours.End)
	if !ok1 || !ok2 || start == end {
		return false
	}

	m := now.Hour()*60 + now.Minute()
	if start < end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

func minuteOfDay(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
