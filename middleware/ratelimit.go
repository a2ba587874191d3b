package middleware

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	logger   *log.Logger
}

// NewRateLimiter allows perMinute requests per client with the given burst. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute, burst int, logger *log.Logger) *RateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{visitors: map[string]*visitor{}, rate: limit, burst: burst, logger: logger}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// Handler is the Fiber middleware.
func (rl *RateLimiter) Handler(c *fiber.Ctx) error {
	key := c.IP()
	if !rl.allow(key) {
		rl.logger.Warn("rate limit exceeded", "ip", key, "path", c.Path())
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests. Try again later."})
	}
	return c.Next()
}

// Prune forgets clients idle for longer than idle and returns how many were removed.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}
