// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"medportal_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Mask writes message with the status derived from err's kind, discarding the
// error text. Untyped errors become a 500.
func Mask(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		status = domainErr.HTTPStatus()
	}
	c.JSON(status, ErrorResponse{Error: message})
}
