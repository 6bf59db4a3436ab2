package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// Error writes an error response with the provided API error code and message.
func Error(c *gin.Context, status int, errCode, message string) {
	c.JSON(status, ErrorResponse{
		Error: ErrorInfo{
			Code:    errCode,
			Message: message,
		},
	})
}

// ErrorFrom maps a service error onto the HTTP taxonomy: NotFound 404,
// InvalidArgument 400, Conflict 409, everything else 500.
func ErrorFrom(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(c, 404, ErrNotFound.Error(), message)
	case errors.Is(err, ErrInvalidArgument):
		Error(c, 400, ErrInvalidArgument.Error(), message)
	case errors.Is(err, ErrConflict):
		Error(c, 409, ErrConflict.Error(), message)
	default:
		Error(c, 500, "INTERNAL_ERROR", message)
	}
}
