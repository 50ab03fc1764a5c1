package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"equiprent/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter increments a fixed-window counter and returns the new value.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RedisCounter struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCounter(client redis.Cmdable, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	full := r.prefix + key
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, full)
	pipe.Expire(ctx, full, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimit allows limit requests per client IP and route within each window.
// Counter failures are logged and the request is let through.
func RateLimit(counter Counter, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	if window < time.Second {
		window = time.Minute
	}
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 {
			c.Next()
			return
		}

		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("%s:%s:%s:%d", c.ClientIP(), c.Request.Method, c.FullPath(), bucket)

		n, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err), zap.String("request_id", requestID(c)))
			c.Next()
			return
		}

		remaining := int64(limit) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Abort(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later")
			return
		}

		c.Next()
	}
}
