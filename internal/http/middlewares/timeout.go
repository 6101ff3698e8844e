package middlewares

import (
	"time"

	"github.com/geocoder89/storefront/internal/config"
	"github.com/gin-gonic/gin"
)

// RequestTimeout bounds every store call made while serving the request.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := config.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
