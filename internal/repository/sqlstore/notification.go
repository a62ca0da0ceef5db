package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
)

type notificationRepository struct {
	*DB
}

type notificationRow struct {
	model.Notification
	RawData string `db:"data"`
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (err error) {
	defer r.track("create_notification")(&err)

	data := n.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO notifications (id, user_id, type, title, message, priority, data, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, string(n.Priority),
		string(encoded), n.IsRead, n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) (out []*model.Notification, err error) {
	defer r.track("list_notifications")(&err)

	var rows []notificationRow
	query := r.db.Rebind(`
		SELECT id, user_id, type, title, message, priority, data, is_read, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`)
	if err = r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out = make([]*model.Notification, 0, len(rows))
	for i := range rows {
		n := rows[i].Notification
		if rows[i].RawData != "" {
			if err = json.Unmarshal([]byte(rows[i].RawData), &n.Data); err != nil {
				return nil, fmt.Errorf("failed to decode data of notification %s: %w", n.ID, err)
			}
		}
		out = append(out, &n)
	}
	return out, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) (err error) {
	defer r.track("mark_read")(&err)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`), true, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (count int64, err error) {
	defer r.track("mark_all_read")(&err)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`), true, userID, false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.RowsAffected()
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id string) (err error) {
	defer r.track("delete_notification")(&err)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM notifications WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireAffected(res.RowsAffected())
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (count int64, err error) {
	defer r.track("delete_read_before")(&err)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM notifications WHERE is_read = ? AND created_at < ?`), true, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}
	return res.RowsAffected()
}

func requireAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
