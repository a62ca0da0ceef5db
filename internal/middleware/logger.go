package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/projecta/notifier/pkg/logger"
)

// Logger returns a middleware that logs HTTP requests
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		reqLog := log.With("request_id", c.GetString(ContextRequestID))
		c.Request = c.Request.WithContext(reqLog.ToContext(c.Request.Context()))

		// Process request
		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		statusCode := c.Writer.Status()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"status", statusCode,
			"duration", time.Since(start).String(),
			"user_agent", c.Request.UserAgent(),
		}
		if userID := UserID(c); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		// Log based on status code
		switch {
		case statusCode >= 500:
			reqLog.Error(nil, "Server error", fields...)
		case statusCode >= 400:
			reqLog.Warn("Client error", fields...)
		default:
			reqLog.Info("Request processed", fields...)
		}
	}
}
