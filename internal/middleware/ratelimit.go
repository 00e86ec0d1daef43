package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/KeremKalyoncu/vidlink/internal/types"
)

// RateLimiter implements fixed-window token bucket rate limiting per client IP
type RateLimiter struct {
	clients map[string]*clientBucket
	mu      sync.Mutex
	rate    int           // requests per window
	window  time.Duration // time window
	now     func() time.Time
	closeCh chan struct{}
	once    sync.Once
}

type clientBucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter (e.g., 60 requests per minute)
func NewRateLimiter(requestsPerWindow int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		rate:    requestsPerWindow,
		window:  window,
		now:     time.Now,
		closeCh: make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Middleware returns Fiber middleware function
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rl.window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(types.ErrorResponse{
				Success: false,
				Error:   "Too many requests. Please try again later.",
			})
		}

		return c.Next()
	}
}

// allow checks if client can make a request
func (rl *RateLimiter) allow(clientID string) bool {
	if rl.rate <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	bucket, exists := rl.clients[clientID]
	if !exists {
		bucket = &clientBucket{
			tokens:     rl.rate,
			lastRefill: now,
		}
		rl.clients[clientID] = bucket
	}

	if now.Sub(bucket.lastRefill) >= rl.window {
		bucket.tokens = rl.rate
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

// cleanup removes stale client entries
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evict(10 * time.Minute)
		case <-rl.closeCh:
			return
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for clientID, bucket := range rl.clients {
		if now.Sub(bucket.lastRefill) > idle {
			delete(rl.clients, clientID)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.closeCh) })
}
