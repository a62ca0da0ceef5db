// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/projecta/notifier/internal/model"
)

type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) ListForUser(ctx context.Context, userID string) ([]*model.Project, error) {
	args := m.Called(ctx, userID)
	projects, _ := args.Get(0).([]*model.Project)
	return projects, args.Error(1)
}

func (m *ProjectRepository) Get(ctx context.Context, projectID string) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	project, _ := args.Get(0).(*model.Project)
	return project, args.Error(1)
}

func (m *ProjectRepository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) Get(ctx context.Context, userID string) (*model.NotificationSettings, error) {
	args := m.Called(ctx, userID)
	settings, _ := args.Get(0).(*model.NotificationSettings)
	return settings, args.Error(1)
}

func (m *SettingsRepository) Save(ctx context.Context, userID string, settings *model.NotificationSettings) error {
	return m.Called(ctx, userID, settings).Error(0)
}

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*model.Notification)
	return list, args.Error(1)
}

func (m *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
