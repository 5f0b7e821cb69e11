package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "scentify/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		resp.Abort(c, http.StatusTooManyRequests, "too many requests")
	}
}

// 闲置超过 ipIdleTTL 的 IP 桶在下次清扫时回收
const ipIdleTTL = 10 * time.Minute

type ipBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type ipBuckets struct {
	mu        sync.Mutex
	m         map[string]*ipBucket
	rps       rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPBuckets(rps rate.Limit, burst int, ttl time.Duration) *ipBuckets {
	return &ipBuckets{
		m:         make(map[string]*ipBucket),
		rps:       rps,
		burst:     burst,
		ttl:       ttl,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (b *ipBuckets) get(ip string) *rate.Limiter {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Sub(b.lastSweep) >= b.ttl {
		for k, v := range b.m {
			if now.Sub(v.lastSeen) >= b.ttl {
				delete(b.m, k)
			}
		}
		b.lastSweep = now
	}
	e, ok := b.m[ip]
	if !ok {
		e = &ipBucket{lim: rate.NewLimiter(b.rps, b.burst)}
		b.m[ip] = e
	}
	e.lastSeen = now
	return e.lim
}

// RateLimitPerIP 每 IP 限速
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	buckets := newIPBuckets(rps, burst, ipIdleTTL)
	return func(c *gin.Context) {
		if buckets.get(c.ClientIP()).Allow() {
			c.Next()
			return
		}
		resp.Abort(c, http.StatusTooManyRequests, "too many requests")
	}
}
