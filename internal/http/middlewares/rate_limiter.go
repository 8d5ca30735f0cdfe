package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/userapi/internal/requestctx"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window counter per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	now     func() time.Time
	clients map[string]*window
}

type window struct {
	count int
	end   time.Time
}

func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  per,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

// allow records a hit for key and reports how long to wait when over the limit.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[key]
	if !ok || !now.Before(w.end) {
		rl.clients[key] = &window{count: 1, end: now.Add(rl.window)}
		rl.sweep(now)
		return true, 0
	}

	if w.count >= rl.limit {
		return false, w.end.Sub(now)
	}

	w.count++
	return true, 0
}

// sweep drops expired windows once the table grows.
func (rl *RateLimiter) sweep(now time.Time) {
	if len(rl.clients) < 1024 {
		return
	}
	for k, w := range rl.clients {
		if !now.Before(w.end) {
			delete(rl.clients, k)
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}

		secs := int(retryAfter.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))

		reqID, _ := requestctx.RequestIDFrom(c.Request.Context())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": gin.H{
				"code":      "rate_limited",
				"message":   "Too many requests. Please try again shortly.",
				"requestId": reqID,
			},
		})
	}
}
