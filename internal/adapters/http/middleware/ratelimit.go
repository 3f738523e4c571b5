package middleware

import (
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen/garage-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
)

const defaultIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client. A client is the
// authenticated subject when the subject header is set, its IP otherwise.
// Buckets idle for longer than the TTL are dropped.
type RateLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimiter allows perSecond requests per client with bursts of burst.
func NewRateLimiter(perSecond float64, burst int, idleTTL time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}

	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}

	return &RateLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     idleTTL,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

// Middleware rejects requests over the client's rate with 429 RATE_LIMITED
// and a Retry-After header.
func (rl *RateLimiter) Middleware(subjectHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if subjectHeader != "" {
			if subject := c.GetHeader(subjectHeader); subject != "" {
				key = "subject:" + subject
			}
		}

		if rl.allow(key) {
			c.Next()
			return
		}

		logging.FromContext(c.Request.Context()).WarnContext(c.Request.Context(), "rate limit exceeded",
			slog.String("client", key),
			slog.String("path", c.Request.URL.Path),
		)

		c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
		dto.AbortWithCode(c, dto.ErrorCodeRateLimited, "too many requests, retry later")
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.clients)
}

func (rl *RateLimiter) allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.ttl {
		for k, cl := range rl.clients {
			if now.Sub(cl.lastSeen) > rl.ttl {
				delete(rl.clients, k)
			}
		}

		rl.lastSweep = now
	}

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = cl
	}

	cl.lastSeen = now

	return cl.limiter.AllowN(now, 1)
}

// retryAfterSeconds is the time for one token to come back, at least 1s.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.limit <= 0 {
		return 1
	}

	return max(1, int(math.Ceil(1/float64(rl.limit))))
}
