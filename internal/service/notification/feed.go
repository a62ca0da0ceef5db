package notification

import (
	"context"
	"sort"
	"strings"

	"github.com/projecta/notifier/internal/model"
)

func (s *service) Feed(ctx context.Context, userID string, filter model.NotificationFilter) []*model.Notification {
	return applyFilter(s.ListNotifications(ctx, userID), filter)
}

func (s *service) GroupedFeed(ctx context.Context, userID string, filter model.NotificationFilter) []*model.NotificationGroup {
	limit := filter.Limit
	filter.Limit = 0
	groups := Group(applyFilter(s.ListNotifications(ctx, userID), filter))
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

func (s *service) Stats(ctx context.Context, userID string) *model.NotificationStats {
	stats := &model.NotificationStats{ByType: make(map[model.NotificationType]int)}
	for _, n := range s.ListNotifications(ctx, userID) {
		stats.Total++
		stats.ByType[n.Type]++
		if !n.IsRead {
			stats.Unread++
		}
	}
	return stats
}

func applyFilter(list []*model.Notification, filter model.NotificationFilter) []*model.Notification {
	out := make([]*model.Notification, 0, len(list))
	for _, n := range list {
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.Unread && n.IsRead {
			continue
		}
		out = append(out, n)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

// GroupKey identifies notifications that collapse into one feed entry:
// same type, same project and task, same calendar day.
func GroupKey(n *model.Notification) string {
	return strings.Join([]string{
		string(n.Type),
		n.DataString(model.DataProjectID),
		n.DataString(model.DataTaskID),
		n.CreatedAt.Format("2006-01-02"),
	}, "|")
}

// Group collapses list, which must be sorted newest first, keeping that order
// by each group's newest entry.
func Group(list []*model.Notification) []*model.NotificationGroup {
	index := make(map[string]*model.NotificationGroup)
	var groups []*model.NotificationGroup

	for _, n := range list {
		key := GroupKey(n)
		g, ok := index[key]
		if !ok {
			g = &model.NotificationGroup{
				Key:      key,
				Type:     n.Type,
				Title:    n.Title,
				Message:  n.Message,
				Priority: n.Priority,
				LatestAt: n.CreatedAt,
			}
			index[key] = g
			groups = append(groups, g)
		}
		g.Count++
		if !n.IsRead {
			g.Unread++
		}
		g.Notifications = append(g.Notifications, n)
	}
	return groups
}

func sortByCreatedDesc(list []*model.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
