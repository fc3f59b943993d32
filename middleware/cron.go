package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CronAuth guards the scheduler trigger with a shared secret sent as
// "Authorization: Bearer <secret>" or "X-Cron-Secret: <secret>". An empty
// secret disables the endpoint.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"code":       http.StatusServiceUnavailable,
				"message":    "cron trigger is not configured",
				"error_code": "CRON_DISABLED",
			})
			return
		}

		given := c.GetHeader("X-Cron-Secret")
		if header := c.GetHeader("Authorization"); given == "" && strings.HasPrefix(header, "Bearer ") {
			given = strings.TrimPrefix(header, "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":       http.StatusUnauthorized,
				"message":    "invalid cron secret",
				"error_code": "UNAUTHORIZED",
			})
			return
		}
		c.Next()
	}
}
