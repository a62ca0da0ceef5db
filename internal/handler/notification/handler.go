package notification

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/projecta/notifier/internal/handler"
	"github.com/projecta/notifier/internal/middleware"
	"github.com/projecta/notifier/internal/model"
	notificationService "github.com/projecta/notifier/internal/service/notification"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
	"github.com/projecta/notifier/pkg/messaging"
)

const StreamPath = "/api/v1/notifications/stream"

type Handler struct {
	service   notificationService.Service
	broker    messaging.Broker
	logger    *logger.Logger
	heartbeat time.Duration
}

// NewHandler serves the inbox. The live stream is disabled when broker is nil.
func NewHandler(service notificationService.Service, broker messaging.Broker, log *logger.Logger) *Handler {
	return &Handler{
		service:   service,
		broker:    broker,
		logger:    log,
		heartbeat: 25 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/stats", h.Stats)
		notifications.GET("/stream", h.Stream)
		notifications.PUT("/read-all", h.MarkAllRead)
		notifications.PUT("/:id/read", h.MarkRead)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}

type listQuery struct {
	Type    string `form:"type"`
	Unread  bool   `form:"unread"`
	Limit   int    `form:"limit" binding:"omitempty,min=0,max=500"`
	Grouped bool   `form:"grouped"`
}

func (h *Handler) ListNotifications(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.RespondError(c, apperrors.BadRequest("invalid query parameters", err))
		return
	}

	filter := model.NotificationFilter{
		Type:   model.NotificationType(q.Type),
		Unread: q.Unread,
		Limit:  q.Limit,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		handler.RespondError(c, apperrors.BadRequest("unknown notification type", nil))
		return
	}

	userID := middleware.UserID(c)
	if q.Grouped {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.GroupedFeed(c.Request.Context(), userID, filter)))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Feed(c.Request.Context(), userID, filter)))
}

func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Stats(c.Request.Context(), middleware.UserID(c))))
}

func (h *Handler) MarkRead(c *gin.Context) {
	if !h.service.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id")) {
		handler.RespondError(c, apperrors.NotFound("notification", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": c.Param("id"), "is_read": true}))
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	if !h.service.MarkAllRead(c.Request.Context(), middleware.UserID(c)) {
		handler.RespondError(c, apperrors.Unavailable("could not update notifications", nil))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	if !h.service.DeleteNotification(c.Request.Context(), middleware.UserID(c), c.Param("id")) {
		handler.RespondError(c, apperrors.NotFound("notification", nil))
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream pushes new notifications as server-sent events. The first event
// carries the current stats; a ping keeps idle proxies from closing the connection.
func (h *Handler) Stream(c *gin.Context) {
	if h.broker == nil {
		handler.RespondError(c, apperrors.Unavailable("live notifications are disabled", nil))
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	messages, err := h.broker.Subscribe(ctx, messaging.UserChannel(notificationService.ChannelPrefix, userID))
	if err != nil {
		h.logger.Error(err, "Failed to subscribe to notifications", "user_id", userID)
		handler.RespondError(c, apperrors.Unavailable("live notifications are unavailable", err))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("stats", h.service.Stats(ctx, userID))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.SSEvent("notification", json.RawMessage(msg))
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		}
	}
}
