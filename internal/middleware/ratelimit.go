package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apierrors "github.com/yukikurage/geoblog/internal/errors"
)

// RateLimiter is a fixed-window request counter kept in Redis.
type RateLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	log    *zap.Logger
}

func NewRateLimiter(rdb redis.Cmdable, limit int, window time.Duration, log *zap.Logger) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window, log: log}
}

// Allow counts one request for id against resource and reports whether it
// is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string) (bool, error) {
	if l.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return cnt <= int64(l.limit), nil
}

// Limit rejects requests over the limit with 429. Requests are let through
// when Redis cannot be reached.
func (l *RateLimiter) Limit(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), resource, "ip:"+c.ClientIP())
		if err != nil {
			l.log.Warn("rate limit check failed, allowing request",
				zap.String("resource", resource),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !allowed {
			apierrors.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Disabled returns a no-op handler for when rate limiting is switched off.
func Disabled() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}
