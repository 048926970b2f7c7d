package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"snackexport/internal/core/apperror"
	"snackexport/pkg/logger"
)

// RateLimit throttles requests per client IP. format is the limiter notation,
// e.g. "300-M" for 300 requests per minute.
func RateLimit(format string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit %q: %w", format, err)
	}

	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			appErr := apperror.NewRateLimited(rate.Limit)
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// A store failure must not take the API down.
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
		}),
	), nil
}
