package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter pairs a token bucket with its last use, so idle clients
// can be evicted.
type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

const limiterIdleEvict = 10 * time.Minute

// RateLimit applies a per-client-IP token bucket ahead of auth, keeping
// burst-scoring abuse off the engines. r is the sustained requests per
// second, b the burst size.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	// Idle buckets are swept inline once per minute rather than by a
	// background goroutine; the sweep holds the lock it already has.
	lastSweep := time.Now()
	acquire := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastSweep) > time.Minute {
			for ip, cl := range clients {
				if now.Sub(cl.lastSeen) > limiterIdleEvict {
					delete(clients, ip)
				}
			}
			lastSweep = now
		}

		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{bucket: rate.NewLimiter(r, b)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		return cl.bucket
	}

	return func(c *gin.Context) {
		if !acquire(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
