package notification

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/projecta/notifier/internal/email"
	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
	"github.com/projecta/notifier/internal/service/settings"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/messaging"
	"github.com/projecta/notifier/pkg/metrics"
)

// Channel prefix for live pushes; the full channel is "notifications:{userID}".
const ChannelPrefix = "notifications"

type Service interface {
	// CreateNotification persists n and returns its id. Store errors are returned.
	CreateNotification(ctx context.Context, n *model.Notification) (string, error)

	// The Notify family never fails: errors are logged and swallowed.
	NotifyTaskDeadline(ctx context.Context, userID string, project *model.Project, task *model.Task, daysLeft int)
	NotifyOverdueTask(ctx context.Context, userID string, project *model.Project, task *model.Task, daysOverdue int)
	NotifyTaskAssignment(ctx context.Context, project *model.Project, task *model.Task, assignees []string, actorID string)
	NotifyTaskStatusChanged(ctx context.Context, project *model.Project, task *model.Task, oldStatus, newStatus model.TaskStatus, actorID string)
	NotifyProjectUpdate(ctx context.Context, project *model.Project, actorID, message string)
	NotifyProjectAssignment(ctx context.Context, project *model.Project, userIDs []string, actorID string)
	NotifyTeamInvitation(ctx context.Context, project *model.Project, inviteeIDs []string, actorID string)
	NotifyInviteAccepted(ctx context.Context, project *model.Project, acceptedBy string)
	NotifyCommentAdded(ctx context.Context, project *model.Project, task *model.Task, actorID, comment string)

	// Inbox operations signal success with a boolean.
	ListNotifications(ctx context.Context, userID string) []*model.Notification
	Feed(ctx context.Context, userID string, filter model.NotificationFilter) []*model.Notification
	GroupedFeed(ctx context.Context, userID string, filter model.NotificationFilter) []*model.NotificationGroup
	Stats(ctx context.Context, userID string) *model.NotificationStats
	MarkRead(ctx context.Context, userID, id string) bool
	MarkAllRead(ctx context.Context, userID string) bool
	DeleteNotification(ctx context.Context, userID, id string) bool
}

type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithBroker pushes every created notification to live subscribers.
func WithBroker(b messaging.Broker) Option {
	return func(s *service) { s.broker = b }
}

// WithEmail mails high and urgent notifications to users who opted in.
func WithEmail(e email.Service) Option {
	return func(s *service) { s.emailSvc = e }
}

type service struct {
	repo     repository.NotificationRepository
	settings settings.Service
	broker   messaging.Broker
	emailSvc email.Service
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(repo repository.NotificationRepository, settingsSvc settings.Service, log *logger.Logger, m *metrics.Metrics, opts ...Option) Service {
	s := &service{
		repo:     repo,
		settings: settingsSvc,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
	if s.metrics == nil {
		s.metrics = metrics.New("notifier")
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateNotification(ctx context.Context, n *model.Notification) (string, error) {
	if err := s.validateNotification(n); err != nil {
		return "", fmt.Errorf("invalid notification: %w", err)
	}

	now := s.now()
	n.ID = NewID(n.Type, now)
	n.CreatedAt = now
	n.IsRead = false
	if n.Priority == "" {
		n.Priority = model.PriorityFor(n.Type)
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(n.Type)).Inc()
		return "", fmt.Errorf("failed to create notification: %w", err)
	}
	s.metrics.NotificationsEmitted.WithLabelValues(string(n.Type)).Inc()

	s.publish(ctx, n)
	return n.ID, nil
}

// NewID returns "{type}_{unixMillis}_{random suffix}".
func NewID(t model.NotificationType, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s", t, at.UnixMilli(), uuid.NewString()[:8])
}

func (s *service) validateNotification(n *model.Notification) error {
	if n == nil {
		return errors.New("notification is required")
	}
	if n.UserID == "" {
		return errors.New("user ID is required")
	}
	if !n.Type.Valid() {
		return fmt.Errorf("unknown notification type %q", n.Type)
	}
	if n.Title == "" || n.Message == "" {
		return errors.New("title and message are required")
	}
	return nil
}

// publish delivers n to live subscribers and, when asked for, by email.
// Both are best effort: the notification is already stored.
func (s *service) publish(ctx context.Context, n *model.Notification) {
	if s.broker != nil {
		channel := messaging.UserChannel(ChannelPrefix, n.UserID)
		err := s.broker.Publish(ctx, channel, messaging.Message{
			Type:    string(n.Type),
			UserID:  n.UserID,
			Payload: n,
		})
		status := "success"
		if err != nil {
			status = "error"
			s.logger.Warn("Failed to push notification", "notification_id", n.ID, "error", err.Error())
		}
		s.metrics.BrokerPublishes.WithLabelValues(ChannelPrefix, status).Inc()
	}

	if s.emailSvc == nil || (n.Priority != model.PriorityHigh && n.Priority != model.PriorityUrgent) {
		return
	}
	addr, err := mail.ParseAddress(n.UserID)
	if err != nil {
		return
	}
	if !s.settings.GetSettings(ctx, n.UserID).EmailDelivery.Enabled {
		return
	}
	if err := s.emailSvc.SendCustom(ctx, addr.Address, n.Title, n.Message); err != nil {
		s.logger.Error(err, "Failed to email notification", "notification_id", n.ID)
	}
}

func (s *service) ListNotifications(ctx context.Context, userID string) []*model.Notification {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error(err, "Failed to load notifications", "user_id", userID)
		return []*model.Notification{}
	}
	sortByCreatedDesc(list)
	return list
}

func (s *service) MarkRead(ctx context.Context, userID, id string) bool {
	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		s.logInboxError(err, "Failed to mark notification as read", userID, id)
		return false
	}
	return true
}

func (s *service) MarkAllRead(ctx context.Context, userID string) bool {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error(err, "Failed to mark all notifications as read", "user_id", userID)
		return false
	}
	s.logger.Debug("Marked notifications as read", "user_id", userID, "count", n)
	return true
}

func (s *service) DeleteNotification(ctx context.Context, userID, id string) bool {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		s.logInboxError(err, "Failed to delete notification", userID, id)
		return false
	}
	return true
}

func (s *service) logInboxError(err error, msg, userID, id string) {
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Debug(msg, "user_id", userID, "notification_id", id, "error", err.Error())
		return
	}
	s.logger.Error(err, msg, "user_id", userID, "notification_id", id)
}
