package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

var errNoLimitStore = errors.New("rate limit store unavailable")

// limiterKey builds the Redis key for one caller on one resource.
func limiterKey(resource, caller string) string {
	return fmt.Sprintf("rl:%s:%s", resource, caller)
}

// callerID identifies the requester. Authenticated admins are keyed by account
// so a shared office IP cannot lock the dashboard out; everyone else is keyed
// by remote IP.
func callerID(c *fiber.Ctx) string {
	if aid := c.Locals("adminID"); aid != nil {
		return fmt.Sprintf("admin:%v", aid)
	}
	return fmt.Sprintf("ip:%s", c.IP())
}

// CheckRateLimit reports whether a caller is still within its window.
// Limiting is disabled under APP_ENV test/development so local workflows are
// not throttled.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, caller string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" || env == "test" || env == "development" {
		return true, nil
	}

	if rdb == nil {
		return false, errNoLimitStore
	}

	key := limiterKey(resource, caller)
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	// First hit in a window owns the expiry.
	if count == 1 {
		rdb.Expire(ctx, key, window)
	}
	return count <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`
// with the FailOpen policy. An optional name overrides the request path as the
// resource identifier so the same budget can span several routes.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit store-failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(context.Background(), rdb, resource, callerID(c), limit, window)
		if err != nil {
			if policy == FailClosed {
				log.Printf("WARNING: rate limit store down, failing closed for %s: %v", resource, err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
