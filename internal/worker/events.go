package worker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hibiken/asynq"

	"github.com/projecta/notifier/internal/queue"
	"github.com/projecta/notifier/internal/service/event"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
)

// EventWorker consumes domain events enqueued by the API.
type EventWorker struct {
	server     *asynq.Server
	dispatcher event.Dispatcher
	logger     *logger.Logger
}

func NewEventWorker(opt asynq.RedisConnOpt, concurrency int, dispatcher event.Dispatcher, log *logger.Logger) *EventWorker {
	if concurrency <= 0 {
		concurrency = 10
	}
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue.QueueEvents: 1,
		},
		Logger:   asynqLogger{log},
		LogLevel: asynq.WarnLevel,
	})
	return &EventWorker{server: server, dispatcher: dispatcher, logger: log}
}

// Start runs the asynq server until ctx is cancelled.
func (w *EventWorker) Start(ctx context.Context) error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeDomainEvent, w.HandleEvent)

	w.logger.Info("Starting event worker", "queue", queue.QueueEvents)
	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start event worker: %w", err)
	}

	<-ctx.Done()

	w.server.Shutdown()
	w.logger.Info("Event worker stopped")
	return nil
}

// HandleEvent dispatches one queued event. Events that can never succeed are
// not retried.
func (w *EventWorker) HandleEvent(ctx context.Context, t *asynq.Task) error {
	e, err := queue.ParseEventTask(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.dispatcher.Dispatch(ctx, e); err != nil {
		w.logger.Error(err, "Failed to dispatch event",
			"event_id", e.ID,
			"event_type", string(e.Type),
			"project_id", e.ProjectID)
		if apperrors.HTTPStatus(err) < http.StatusInternalServerError {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	log *logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(nil, fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(nil, fmt.Sprint(args...)) }
