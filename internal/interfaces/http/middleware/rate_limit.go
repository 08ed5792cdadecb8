// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitSkipper exempts a request from rate limiting
type RateLimitSkipper func(c *gin.Context) bool

// LoopbackRoute skips requests for method and route pattern whose TCP peer is
// a loopback address. Forwarding headers are ignored.
func LoopbackRoute(method, route string) RateLimitSkipper {
	return func(c *gin.Context) bool {
		if c.Request.Method != method || c.FullPath() != route {
			return false
		}
		ip := net.ParseIP(c.RemoteIP())
		return ip != nil && ip.IsLoopback()
	}
}

// RateLimit implements a fixed one-minute window per client IP in Redis.
// Requests pass through when Redis is unavailable or a skipper matches.
func RateLimit(limit int, redisClient *redis.Client, logger *logrus.Logger, skippers ...RateLimitSkipper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || limit <= 0 {
			c.Next()
			return
		}
		for _, skip := range skippers {
			if skip(c) {
				c.Next()
				return
			}
		}

		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			if err := redisClient.Expire(ctx, key, time.Minute).Err(); err != nil {
				logger.WithError(err).Warn("Failed to set rate limit window")
			}
		}

		current := int(count)
		remaining := limit - current
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10))

		if current > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}
