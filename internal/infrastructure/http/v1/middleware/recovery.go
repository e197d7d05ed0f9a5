// Package middleware holds the gin middleware of the depot HTTP API: tracing,
// access logging, idempotency keys, error rendering and panic recovery.
package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"depot/pkg/logger"
)

// Recovery turns a panic in a handler into a 500 response.
//
// It is installed outermost, so ErrorHandler has already unwound by the time
// the panic reaches it; the response is written here. A held idempotency key
// is failed rather than left in progress.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "handler panicked",
				"panic", rec,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			writeInternal(c)
		}()
		c.Next()
	}
}
