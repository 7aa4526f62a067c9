package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// Logging emits one request.complete line per request. 5xx responses log at
// error level and 4xx at warn. Share tokens are bearer secrets, so public
// share paths are logged by route template only.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        loggedPath(c),
			"route":       c.FullPath(),
			"status":      status,
			"bytes_out":   c.Writer.Size(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     c.GetString(userIDKey),
			"document_id": c.GetString("documentId"),
			"folder_id":   c.GetString("folderId"),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}

func loggedPath(c *gin.Context) string {
	if strings.HasPrefix(c.Request.URL.Path, publicSharePrefix) {
		if route := c.FullPath(); route != "" {
			return route
		}
		return publicSharePrefix + ":token"
	}
	return c.Request.URL.Path
}
