package cache

import (
	"errors"
	"time"

	"quill/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// IndexPageKey is the single cache slot for the rendered index page. It is
// deliberately not parameterized by page number, so whichever variant renders
// first during the TTL window is served for all of them.
const IndexPageKey = "page:index"

// IndexPageTTL bounds how stale the cached index page may get. New posts
// become visible only after expiry; there is no invalidation on write.
const IndexPageTTL = 20 * time.Second

// GetBytes returns the cached value for key, or (nil, false) on a miss.
func GetBytes(c *fiber.Ctx, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	body, err := client.Get(c.UserContext(), key).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// SetBytes stores value under key with the given TTL, best-effort.
// Concurrent refreshes race and the last writer wins, which is acceptable
// since staleness within the TTL is tolerated anyway.
func SetBytes(c *fiber.Ctx, key string, value []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	_ = client.Set(c.UserContext(), key, value, ttl).Err()
}

// Invalidate removes a cache entry. The page cache never invalidates on
// writes; this exists for operational cleanup and tests.
func Invalidate(c *fiber.Ctx, key string) error {
	if client == nil {
		return nil
	}
	err := client.Del(c.UserContext(), key).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// CachedPage wraps a GET handler with a byte-level response cache. On a hit
// the stored body is returned verbatim and the handler never runs. On a miss
// the handler renders, and a 200 response is stored for ttl. Without a Redis
// client the middleware is a pass-through.
func CachedPage(key string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if client == nil || c.Method() != fiber.MethodGet {
			return c.Next()
		}

		if body, ok := GetBytes(c, key); ok {
			middleware.PageCacheHits.Inc()
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(body)
		}
		middleware.PageCacheMisses.Inc()

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() == fiber.StatusOK {
			// Copy out of fasthttp's reusable buffer before storing.
			body := make([]byte, len(c.Response().Body()))
			copy(body, c.Response().Body())
			SetBytes(c, key, body, ttl)
		}
		return nil
	}
}
