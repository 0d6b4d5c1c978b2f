package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Rachitt19/BlogApp/internal/httputils"
)

// RateLimiter is a fixed-window counter in Redis, keyed per caller.
type RateLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRateLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Handler limits by authenticated user when available, falling back to
// the client IP. The limiter fails open: if Redis is unreachable the
// request goes through.
func (r *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := UserID(c)
		if key == "" {
			key = c.IP()
		}
		redisKey := fmt.Sprintf("%s:rl:%s", r.prefix, key)

		count, err := r.rdb.Incr(c.Context(), redisKey).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			r.rdb.Expire(c.Context(), redisKey, r.window)
		}
		if count > int64(r.limit) {
			return httputils.Error(c, fiber.StatusTooManyRequests, "Too many requests")
		}
		return c.Next()
	}
}
