package firestore

import (
	"context"
	"fmt"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
)

type settingsRepository struct {
	*Store
}

func (r *settingsRepository) Get(ctx context.Context, userID string) (settings *model.NotificationSettings, err error) {
	defer r.track("get_settings")(&err)

	doc, err := r.client.Collection(collectionSettings).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings = &model.NotificationSettings{}
	if err := doc.DataTo(settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, userID string, settings *model.NotificationSettings) (err error) {
	defer r.track("save_settings")(&err)

	if _, err := r.client.Collection(collectionSettings).Doc(userID).Set(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// SaveProject writes a project document, used by the seed tool against the emulator.
func (s *Store) SaveProject(ctx context.Context, project *model.Project) (err error) {
	defer s.track("save_project")(&err)

	if _, err := s.client.Collection(collectionProjects).Doc(project.ID).Set(ctx, project); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}
