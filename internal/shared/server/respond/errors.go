package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// ErrorResponse is the standardized error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, message string) {
	write(c, status, message, nil)
}

func write(c *gin.Context, status int, message string, cause error) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if cause != nil {
		fields["error"] = cause
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Info("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Message: message})
}

// FromError maps an error kind to its HTTP status and writes the envelope.
// Internal errors are logged with detail and answered generically.
func FromError(c *gin.Context, err error) {
	kind := apperr.Kind(err)
	status := StatusFor(kind)
	if kind == apperr.ErrInternal {
		write(c, status, "Internal server error", err)
		return
	}
	Error(c, status, apperr.Message(err, kind.Error()))
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(kind error) int {
	switch {
	case errors.Is(kind, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, apperr.ErrGone):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
