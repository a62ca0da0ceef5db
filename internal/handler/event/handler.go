package event

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecta/notifier/internal/handler"
	"github.com/projecta/notifier/internal/middleware"
	"github.com/projecta/notifier/internal/model"
	"github.com/projecta/notifier/internal/queue"
	eventService "github.com/projecta/notifier/internal/service/event"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/validator"
)

type Handler struct {
	dispatcher eventService.Dispatcher
	enqueuer   queue.Enqueuer
	validator  *validator.Validator
	logger     *logger.Logger
}

// NewHandler accepts domain events. With a nil enqueuer events are dispatched
// inline on the request.
func NewHandler(dispatcher eventService.Dispatcher, enqueuer queue.Enqueuer, v *validator.Validator, log *logger.Logger) *Handler {
	v.Register("eventtype", func(s string) bool { return model.EventType(s).Valid() })
	return &Handler{
		dispatcher: dispatcher,
		enqueuer:   enqueuer,
		validator:  v,
		logger:     log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/events", h.PublishEvent)
}

func (h *Handler) PublishEvent(c *gin.Context) {
	var event model.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}
	if err := h.validator.Validate(&event); err != nil {
		handler.RespondError(c, apperrors.BadRequest("validation failed", err))
		return
	}
	if event.ActorID == "" {
		event.ActorID = middleware.UserID(c)
	}

	ctx := c.Request.Context()
	if h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueEvent(ctx, &event)
		if err == nil {
			c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{"id": event.ID, "task_id": taskID, "queued": true}))
			return
		}
		h.logger.Error(err, "Failed to enqueue event, dispatching inline",
			"event_type", string(event.Type),
			"project_id", event.ProjectID)
	}

	if err := h.dispatcher.Dispatch(ctx, &event); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{"id": event.ID, "queued": false}))
}
