package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/redis"
	"go-recruiting-platform/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// KeyFunc extracts the subject being limited (default: client IP)
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests when Redis errors instead of falling back to memory
	FailClosed bool
}

// rateLimitEntry is the in-memory fallback counter for one key
type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

var (
	rateLimitStore = sync.Map{}
	cleanupOnce    sync.Once
)

// KEYS[1] counter, ARGV[1] ttl seconds. Returns {count, ttl}.
var rateLimitScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

func startCleanup() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			now := time.Now()
			rateLimitStore.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimitEntry)
				entry.mu.Lock()
				if now.After(entry.resetAt) {
					rateLimitStore.Delete(key)
				}
				entry.mu.Unlock()
				return true
			})
		}
	}()
}

func clientIP(c *gin.Context) string {
	return c.ClientIP()
}

// GlobalRateLimitConfig applies to every route and fails open.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc:   clientIP,
	}
}

// AuthRateLimitConfig guards register and refresh.
func AuthRateLimitConfig(window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      10,
		Window:     window,
		KeyPrefix:  "rl:auth:",
		FailClosed: true,
		KeyFunc:    clientIP,
	}
}

// LoginRateLimitConfig guards the login endpoint.
func LoginRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:login:",
		FailClosed: true,
		KeyFunc:    clientIP,
	}
}

// RateLimitMiddleware counts requests per key in Redis when it is
// configured and in process memory otherwise.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	cleanupOnce.Do(startCleanup)

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var (
			count   int
			resetAt time.Time
			err     error
		)
		if client := redis.Client(); client != nil {
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), client, fullKey, config)
			if err != nil {
				if config.FailClosed {
					logRateLimitError(c, err)
					abortWithError(c, apperror.New(apperror.KindInternal, http.StatusServiceUnavailable,
						"Service temporarily unavailable. Please try again.", err))
					return
				}
				count, resetAt = checkRateLimitInMemory(fullKey, config, now)
			}
		} else {
			count, resetAt = checkRateLimitInMemory(fullKey, config, now)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			security.DefaultLogger().LogRateLimitTriggered(c.Request.Context(),
				c.ClientIP(), c.GetHeader("User-Agent"), requestIDFrom(c), c.FullPath())
			abortWithError(c, apperror.TooManyRequests("Rate limit exceeded. Please try again later."))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(config.Limit-count, 0)))
		c.Next()
	}
}

func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())

	vals, err := rateLimitScript.Run(ctx, client, []string{key}, ttlSeconds).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit script failed: %w", err)
	}
	if len(vals) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	return int(vals[0]), time.Now().Add(time.Duration(vals[1]) * time.Second), nil
}

func checkRateLimitInMemory(key string, config RateLimitConfig, now time.Time) (int, time.Time) {
	entryI, _ := rateLimitStore.LoadOrStore(key, &rateLimitEntry{
		resetAt: now.Add(config.Window),
	})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(config.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

func logRateLimitError(c *gin.Context, err error) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitTriggered,
		SubjectType: "system",
		IP:          c.ClientIP(),
		RequestID:   requestIDFrom(c),
		Details: map[string]interface{}{
			"error_type": "redis_error",
			"error":      err.Error(),
		},
	})
}
