// Package middleware provides HTTP middleware for the snackexport API.
package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "snackexport/internal/core/context"
	"snackexport/internal/core/security"
)

// UserContext copies the authenticated actor id into the request context,
// where services read it to stamp created_by and updated_by.
// It runs after Auth; unauthenticated requests pass through unchanged.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := appctx.GetUserID(c.Request.Context()); uid != "" {
			c.Request = c.Request.WithContext(security.WithUserID(c.Request.Context(), uid))
		}
		c.Next()
	}
}
