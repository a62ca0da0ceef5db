package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
)

type settingsRepository struct {
	*DB
}

func (r *settingsRepository) Get(ctx context.Context, userID string) (settings *model.NotificationSettings, err error) {
	defer r.track("get_settings")(&err)

	var raw string
	err = r.db.GetContext(ctx, &raw, r.db.Rebind(`SELECT settings FROM notification_settings WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings = &model.NotificationSettings{}
	if err = json.Unmarshal([]byte(raw), settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, userID string, settings *model.NotificationSettings) (err error) {
	defer r.track("save_settings")(&err)

	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO notification_settings (user_id, settings, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at`)
	if _, err = r.db.ExecContext(ctx, query, userID, string(encoded), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
