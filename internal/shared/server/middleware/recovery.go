package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/server/respond"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. When the panic happens
// mid-download the status line is already sent, so the connection is only
// aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("request.panic", map[string]any{
				"request_id":      RequestIDFromContext(c),
				"user_id":         UserIDFromContext(c),
				"path":            c.FullPath(),
				"method":          c.Request.Method,
				"error":           fmt.Sprint(rec),
				"stack":           string(debug.Stack()),
				"headers_written": c.Writer.Written(),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "Unexpected server error")
			c.Abort()
		}()
		c.Next()
	}
}
