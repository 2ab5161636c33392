package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgredis "github.com/perfectdish/core/internal/pkg/redis"
)

// RateLimit is a fixed-window per-IP limiter backed by Redis, applied to the
// credential endpoints. Redis failures fail open: losing rate limiting is
// preferable to losing logins.
func RateLimit(rc *pkgredis.Client, log *zap.Logger, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		n, err := rc.Incr(ctx, key)
		if err != nil {
			log.Warn("rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}
		if n == 1 {
			if err := rc.Expire(ctx, key, window); err != nil {
				log.Warn("rate limit expire failed", zap.Error(err))
			}
		}
		if n > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.String(http.StatusTooManyRequests, "too many attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
