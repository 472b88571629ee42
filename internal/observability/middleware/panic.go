package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// PanicRecoveryGin turns a handler panic into a bare 500 so no internal
// detail reaches the caller.
func PanicRecoveryGin() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(c.Request.Context(), "panic recovered",
					slog.String("event", "app.panic"),
					slog.Any("error", rec),
					slog.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "an internal error occurred",
				})
			}
		}()

		c.Next()
	}
}
