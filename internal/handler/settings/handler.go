package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecta/notifier/internal/handler"
	"github.com/projecta/notifier/internal/middleware"
	"github.com/projecta/notifier/internal/model"
	settingsService "github.com/projecta/notifier/internal/service/settings"
)

type Handler struct {
	service settingsService.Service
}

func NewHandler(service settingsService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	settings := r.Group("/settings")
	{
		settings.GET("/notifications", h.GetSettings)
		settings.PATCH("/notifications", h.UpdateSettings)
	}
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.GetSettings(c.Request.Context(), middleware.UserID(c))))
}

// UpdateSettings applies a partial update; omitted categories keep their values.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		handler.RespondError(c, handler.BindError(err))
		return
	}

	updated, err := h.service.UpdateSettings(c.Request.Context(), middleware.UserID(c), &patch)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}
