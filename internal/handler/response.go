package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/projecta/notifier/pkg/errors"
	"github.com/projecta/notifier/pkg/validator"
)

// ContextRequestID is the gin context key holding the request id.
const ContextRequestID = "request_id"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every endpoint answers with, middleware errors included.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{Status: StatusSuccess, Data: data}
}

func NewErrorResponse(message string) *Response {
	return &Response{Status: StatusError, Message: message}
}

// ErrorResponse builds the error envelope for err. Only the public message
// leaves the service; validation failures list the offending fields.
func ErrorResponse(c *gin.Context, err error) *Response {
	resp := NewErrorResponse(apperrors.PublicMessage(err))
	resp.TraceID = c.GetString(ContextRequestID)
	if fields := validator.Fields(err); len(fields) > 0 {
		resp.Data = fields
	}
	return resp
}
