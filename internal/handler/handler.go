package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/validator"
)

// RespondError answers client errors directly. Server errors are attached to
// the context and rendered by the error middleware, which also logs them.
func RespondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(status, ErrorResponse(c, err))
}

// BindError wraps a request decoding failure as a bad request.
func BindError(err error) error {
	if fields := validator.Fields(err); len(fields) > 0 {
		return apperrors.BadRequest("validation failed", err)
	}
	return apperrors.BadRequest("invalid request body", err)
}
