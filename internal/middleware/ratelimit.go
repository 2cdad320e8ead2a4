package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// MemoryLimiter is a fixed-window limiter local to one process.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (r *MemoryLimiter) Allow(key string, limit int, window time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	bucket, ok := r.buckets[key]
	if !ok || now.After(bucket.windowEnd) {
		r.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		r.sweep(now)
		return true
	}
	if bucket.count >= limit {
		return false
	}
	bucket.count++
	return true
}

// sweep drops expired buckets so idle users do not accumulate.
func (r *MemoryLimiter) sweep(now time.Time) {
	if len(r.buckets) < 1024 {
		return
	}
	for k, b := range r.buckets {
		if now.After(b.windowEnd) {
			delete(r.buckets, k)
		}
	}
}

// RateLimit limits requests per authenticated user. It must run after
// AttachJWTLocals; requests without a user are passed through.
func RateLimit(limiter Limiter, scope string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || limit <= 0 {
			return c.Next()
		}
		uid := c.Locals("userId")
		if uid == nil {
			return c.Next()
		}
		key := fmt.Sprintf("ratelimit:%s:%v", scope, uid)
		if !limiter.Allow(key, limit, window) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, slow down")
		}
		return c.Next()
	}
}
