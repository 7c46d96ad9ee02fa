package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP. Password hashing makes the
// login and sign-up routes deliberately expensive, so unauthenticated abuse
// is capped here before it reaches the hasher.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu       sync.Mutex
	limiters map[string]*trackedLimiter
}

type trackedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter for the provided requests-per-minute
// budget. A non-positive budget disables throttling.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
		idleTTL:  5 * time.Minute,
		limiters: make(map[string]*trackedLimiter),
	}
}

// Handler returns the gin middleware enforcing the budget.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if !r.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limited",
				"error_description": "Too many requests. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) allow(key string) bool {
	now := time.Now()

	r.mu.Lock()
	entry, ok := r.limiters[key]
	if !ok {
		entry = &trackedLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = entry
		r.pruneLocked(now)
	}
	entry.lastSeen = now
	r.mu.Unlock()

	return entry.limiter.Allow()
}

func (r *RateLimiter) pruneLocked(now time.Time) {
	for key, entry := range r.limiters {
		if now.Sub(entry.lastSeen) > r.idleTTL {
			delete(r.limiters, key)
		}
	}
}
