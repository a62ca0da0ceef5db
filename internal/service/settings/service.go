package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/validator"
)

type Service interface {
	// GetSettings always returns a complete settings object.
	GetSettings(ctx context.Context, userID string) *model.NotificationSettings
	UpdateSettings(ctx context.Context, userID string, patch *model.SettingsPatch) (*model.NotificationSettings, error)
}

type service struct {
	repo      repository.SettingsRepository
	cache     *cache.Cache
	validator *validator.Validator
	logger    *logger.Logger
}

// NewService returns a settings resolver. A zero cacheTTL disables caching.
func NewService(repo repository.SettingsRepository, cacheTTL time.Duration, v *validator.Validator, log *logger.Logger) Service {
	s := &service{
		repo:      repo,
		validator: v,
		logger:    log,
	}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

// Defaults returns the fully populated default settings.
func Defaults() *model.NotificationSettings {
	return &model.NotificationSettings{
		TaskDeadlines:      model.TaskDeadlineSettings{Enabled: true, DaysBefore: 2},
		OverdueReminders:   model.OverdueReminderSettings{Enabled: true, Frequency: model.FrequencyDaily},
		TaskStatusChanges:  model.TaskStatusChangeSettings{Enabled: true, OnlyMyTasks: false},
		TaskAssignments:    model.ToggleSettings{Enabled: true},
		ProjectAssignments: model.ToggleSettings{Enabled: true},
		QuietHours:         model.QuietHoursSettings{Enabled: false, Start: "22:00", End: "07:00"},
		EmailDelivery:      model.ToggleSettings{Enabled: false},
	}
}

func (s *service) GetSettings(ctx context.Context, userID string) *model.NotificationSettings {
	if cached, ok := s.cached(userID); ok {
		return cached
	}

	stored, err := s.repo.Get(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		settings := Defaults()
		settings.UpdatedAt = time.Now()
		if err := s.repo.Save(ctx, userID, settings); err != nil {
			s.logger.Error(err, "Failed to persist default settings", "user_id", userID)
		}
		s.remember(userID, settings)
		return copyOf(settings)
	case err != nil:
		s.logger.Error(err, "Failed to load settings, using defaults", "user_id", userID)
		return Defaults()
	}

	settings := fillMissing(stored)
	s.remember(userID, settings)
	return copyOf(settings)
}

func (s *service) UpdateSettings(ctx context.Context, userID string, patch *model.SettingsPatch) (*model.NotificationSettings, error) {
	current := s.GetSettings(ctx, userID)
	merged := Merge(current, patch)

	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.BadRequest("invalid notification settings", err)
	}

	merged.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, userID, merged); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to save settings: %w", err))
	}

	s.forget(userID)
	s.logger.Debug("Notification settings updated", "user_id", userID)
	return copyOf(merged), nil
}

func (s *service) cached(userID string) (*model.NotificationSettings, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(userID)
	if !ok {
		return nil, false
	}
	return copyOf(v.(*model.NotificationSettings)), true
}

func (s *service) remember(userID string, settings *model.NotificationSettings) {
	if s.cache != nil {
		s.cache.SetDefault(userID, copyOf(settings))
	}
}

func (s *service) forget(userID string) {
	if s.cache != nil {
		s.cache.Delete(userID)
	}
}

func copyOf(s *model.NotificationSettings) *model.NotificationSettings {
	cp := *s
	return &cp
}
