package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Tabintel/attendance/internal/shared/apperror"
	"github.com/Tabintel/attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var ErrTooManyRequests = apperror.New(apperror.CodeTooManyReq, "Too many requests", http.StatusTooManyRequests)

// limiterIdleTTL is how long a key may go unseen before its limiter is
// dropped. A limiter is never dropped before its bucket could have refilled.
const limiterIdleTTL = 10 * time.Minute

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type KeyRateLimiter struct {
	limiters  map[string]*keyLimiter
	mu        *sync.Mutex
	r         rate.Limit // requests per second
	b         int        // burst
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewKeyRateLimiter(r rate.Limit, b int) *KeyRateLimiter {
	idle := limiterIdleTTL
	if r > 0 && r != rate.Inf {
		if refill := time.Duration(float64(b) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &KeyRateLimiter{
		limiters:  make(map[string]*keyLimiter),
		mu:        &sync.Mutex{},
		r:         r,
		b:         b,
		idle:      idle,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *KeyRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.evictIdle(now)
	}

	entry, exists := l.limiters[key]
	if !exists {
		entry = &keyLimiter{limiter: rate.NewLimiter(l.r, l.b)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evictIdle must be called with mu held.
func (l *KeyRateLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idle {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// RateLimitByKey throttles per key. An empty key is not throttled.
func RateLimitByKey(r rate.Limit, b int, keyFn func(c *gin.Context) string) gin.HandlerFunc {
	limiter := NewKeyRateLimiter(r, b)
	return func(c *gin.Context) {
		key := keyFn(c)
		if key != "" && !limiter.GetLimiter(key).Allow() {
			response.Error(c, ErrTooManyRequests.HTTPStatus, ErrTooManyRequests.Code, ErrTooManyRequests.Message, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitByDevice throttles kiosks; it must run after KioskAuth.
// Kiosks that send no device id share a bucket per client IP.
func RateLimitByDevice(r rate.Limit, b int) gin.HandlerFunc {
	return RateLimitByKey(r, b, func(c *gin.Context) string {
		if device := c.GetString(ContextDevice); device != "" {
			return device
		}
		return "ip:" + c.ClientIP()
	})
}
