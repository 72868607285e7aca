package middlewares

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"spectrumhub/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter counts hits per key inside a window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit caps requests per caller. Signed-in users are keyed by email,
// everyone else by client IP. Limiter errors let the request through.
func RateLimit(limiter Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if email := c.GetString(ContextUserEmail); email != "" {
			key = "user:" + email
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.FromContext(c, zap.NewNop()).Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many submissions",
				"message": "Please wait before submitting another story",
			})
			return
		}
		c.Next()
	}
}
