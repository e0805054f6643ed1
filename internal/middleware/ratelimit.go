package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"quantumvision/internal/auth"
	"quantumvision/internal/errors"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 3 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket limiter per key.
type RateLimiter struct {
	clients sync.Map
	mu      sync.Mutex
	r       rate.Limit
	b       int
	keyFn   func(c echo.Context) string
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst.
// A nil keyFn keys by authenticated user, falling back to the client IP.
func NewRateLimiter(rps float64, burst int, keyFn func(c echo.Context) string) *RateLimiter {
	if keyFn == nil {
		keyFn = KeyBySession
	}
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		r:     rate.Limit(rps),
		b:     burst,
		keyFn: keyFn,
		stop:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	if v, ok := rl.clients.Load(key); ok {
		c := v.(*client)
		rl.mu.Lock()
		c.lastSeen = now
		rl.mu.Unlock()
		return c.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double check
	if v, ok := rl.clients.Load(key); ok {
		c := v.(*client)
		c.lastSeen = now
		return c.limiter
	}

	limiter := rate.NewLimiter(rl.r, rl.b)
	rl.clients.Store(key, &client{limiter: limiter, lastSeen: now})
	return limiter
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.clients.Range(func(key, value interface{}) bool {
		if now.Sub(value.(*client).lastSeen) > limiterIdleTimeout {
			rl.clients.Delete(key)
		}
		return true
	})
}

// Stop ends the background cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(rl.keyFn(c)) {
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
					Error: "too many requests, slow down",
					Code:  "RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}

// KeyByIP returns the client IP as the rate limit key.
func KeyByIP(c echo.Context) string {
	return "ip:" + c.RealIP()
}

// KeyBySession keys by the authenticated user and falls back to IP.
func KeyBySession(c echo.Context) string {
	if session, err := auth.SessionFromContext(c.Request().Context()); err == nil {
		return "user:" + session.UserID.String()
	}
	return KeyByIP(c)
}
