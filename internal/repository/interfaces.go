package repository

import (
	"context"
	"errors"
	"time"

	"github.com/projecta/notifier/internal/model"
)

// ErrNotFound is returned when a document or row does not exist.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	// ProjectRepository is the read-only view of the main application's projects.
	ProjectRepository interface {
		ListForUser(ctx context.Context, userID string) ([]*model.Project, error)
		Get(ctx context.Context, projectID string) (*model.Project, error)
		ListActiveUserIDs(ctx context.Context) ([]string, error)
	}

	// ProjectWriter mirrors a project into the store. The main application owns
	// project writes; this service only uses it for seeding.
	ProjectWriter interface {
		SaveProject(ctx context.Context, project *model.Project) error
	}

	SettingsRepository interface {
		Get(ctx context.Context, userID string) (*model.NotificationSettings, error)
		Save(ctx context.Context, userID string, settings *model.NotificationSettings) error
	}

	// NotificationRepository methods that target one notification are scoped by
	// user and return ErrNotFound when the id does not belong to that user.
	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListByUser(ctx context.Context, userID string) ([]*model.Notification, error)
		MarkRead(ctx context.Context, userID, id string) error
		MarkAllRead(ctx context.Context, userID string) (int64, error)
		Delete(ctx context.Context, userID, id string) error
		DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)

// Store groups the repositories one backend provides.
type Store struct {
	Projects      ProjectRepository
	ProjectWriter ProjectWriter
	Settings      SettingsRepository
	Notifications NotificationRepository
	Ping          func(ctx context.Context) error
	Close         func() error
}
