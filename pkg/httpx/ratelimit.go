package httpx

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Gunvolt24/order_service/pkg/metrics"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
)

// window - счётчик запросов клиента в текущем окне.
type window struct {
	resetAt time.Time
	count   int
}

// RateLimiter - лимит запросов на клиента (IP) в фиксированном окне.
// Окна клиентов живут в LRU: при переполнении вытесняются давно не приходившие клиенты.
type RateLimiter struct {
	name   string
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows *lru.Cache[string, *window]
}

// NewRateLimiter - limit запросов за period на клиента; limit <= 0 выключает лимит.
func NewRateLimiter(name string, limit int, period time.Duration, maxClients int) (*RateLimiter, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rate limiter %s: period must be positive", name)
	}
	if maxClients <= 0 {
		maxClients = 1
	}
	windows, err := lru.New[string, *window](maxClients)
	if err != nil {
		return nil, fmt.Errorf("rate limiter %s: %w", name, err)
	}
	return &RateLimiter{
		name:    name,
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: windows,
	}, nil
}

// Allow - учитывает запрос клиента key; при превышении вернёт false и время до сброса окна.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	if l == nil || l.limit <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows.Get(key)
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows.Add(key, w)
	}
	if w.count >= l.limit {
		return false, w.resetAt.Sub(now)
	}
	w.count++
	return true, 0
}

// Middleware - 429 с Retry-After при превышении лимита по IP клиента.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := l.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}
		metrics.RateLimited.WithLabelValues(l.name).Inc()
		secs := int(math.Ceil(retryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	}
}
