// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"snackexport/internal/core/apperror"
	"snackexport/pkg/logger"
)

// Recovery middleware recovers from panics and returns 500 error.
// Logs stack trace but never exposes internal details to client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				// ErrorHandler sits below Recovery and never sees the panic.
				status, body := errorResponse(c, apperror.NewInternal(fmt.Errorf("panic: %v", err)))
				FailIdempotency(c, status, body)
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(status, body)
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
