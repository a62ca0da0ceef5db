package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/repository"
)

type notificationRepository struct {
	*Store
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) (err error) {
	defer r.track("create_notification")(&err)

	_, err = r.client.Collection(collectionNotifications).Doc(n.ID).Create(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) (result []*model.Notification, err error) {
	defer r.track("list_notifications")(&err)

	query := r.client.Collection(collectionNotifications).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get notifications: %w", err)
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to parse notification %s: %w", doc.Ref.ID, err)
		}
		n.ID = doc.Ref.ID
		result = append(result, &n)
	}
	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string) (err error) {
	defer r.track("mark_read")(&err)

	ref, err := r.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if _, err := ref.Update(ctx, []firestore.Update{{Path: "is_read", Value: true}}); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (count int64, err error) {
	defer r.track("mark_all_read")(&err)

	query := r.client.Collection(collectionNotifications).
		Where("user_id", "==", userID).
		Where("is_read", "==", false)

	return r.bulk(ctx, query, func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Update(ref, []firestore.Update{{Path: "is_read", Value: true}})
	})
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id string) (err error) {
	defer r.track("delete_notification")(&err)

	ref, err := r.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (count int64, err error) {
	defer r.track("delete_read_before")(&err)

	query := r.client.Collection(collectionNotifications).
		Where("is_read", "==", true).
		Where("created_at", "<", cutoff)

	return r.bulk(ctx, query, func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Delete(ref)
	})
}

// owned returns the document ref when it exists and belongs to userID.
func (r *notificationRepository) owned(ctx context.Context, userID, id string) (*firestore.DocumentRef, error) {
	ref := r.client.Collection(collectionNotifications).Doc(id)
	doc, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	owner, err := doc.DataAt("user_id")
	if err != nil || owner != userID {
		return nil, repository.ErrNotFound
	}
	return ref, nil
}

func (r *notificationRepository) bulk(
	ctx context.Context,
	query firestore.Query,
	op func(*firestore.BulkWriter, *firestore.DocumentRef) (*firestore.BulkWriterJob, error),
) (int64, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	bulkWriter := r.client.BulkWriter(ctx)
	defer bulkWriter.End()

	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to get notifications: %w", err)
		}

		job, err := op(bulkWriter, doc.Ref)
		if err != nil {
			return 0, fmt.Errorf("failed to add write to bulk writer: %w", err)
		}
		jobs = append(jobs, job)
	}

	bulkWriter.Flush()

	var count int64
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return count, fmt.Errorf("bulk write failed: %w", err)
		}
		count++
	}
	return count, nil
}
