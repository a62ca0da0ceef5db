package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/projecta/notifier/internal/repository"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/metrics"
)

// CleanupWorker deletes read notifications once they pass the retention window.
type CleanupWorker struct {
	repo            repository.NotificationRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewCleanupWorker(
	repo repository.NotificationRepository,
	retentionDays int,
	cleanupInterval time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) *CleanupWorker {
	if m == nil {
		m = metrics.New("worker")
	}
	return &CleanupWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          log,
		metrics:         m,
		now:             time.Now,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Cleanup(ctx); err != nil {
				// Log error but continue
				w.logger.Error(err, "Notification cleanup failed")
			}
		}
	}
}

func (w *CleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup notifications: %w", err)
	}

	w.metrics.NotificationsCleaned.Add(float64(rows))
	w.logger.Info("Cleaned up read notifications", "deleted", rows, "cutoff", cutoff.Format(time.RFC3339))
	return rows, nil
}
