package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/projecta/notifier/internal/handler"
	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/logger"
)

func abortWithError(c *gin.Context, status int, message string) {
	resp := handler.NewErrorResponse(message)
	resp.TraceID = c.GetString(ContextRequestID)
	c.AbortWithStatusJSON(status, resp)
}

// ErrorHandler renders errors handlers attached with c.Error.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		traceID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error(e.Err, "Request error",
				"trace_id", traceID,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"client_ip", c.ClientIP())
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		c.JSON(apperrors.HTTPStatus(lastErr), handler.ErrorResponse(c, lastErr))
	}
}
