package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/WWJD/logger"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter keeps one token bucket per key in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func NewMemoryLimiter(r rate.Limit, b int) *MemoryLimiter {
	return &MemoryLimiter{limiters: make(map[string]*rate.Limiter), r: r, b: b}
}

func (m *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(m.r, m.b)
		m.limiters[key] = limiter
	}
	return limiter
}

func (m *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return m.getLimiter(key).Allow(), nil
}

// RedisLimiter counts requests per key in fixed windows shared by every
// replica.
type RedisLimiter struct {
	rdb    goredis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb goredis.UniversalClient, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	return incr.Val() <= l.limit, nil
}

// RateLimitMiddleware rejects requests over the limit with 429. When the
// limiter itself fails the request is let through.
func RateLimitMiddleware(limiter Limiter, keyFunc func(*gin.Context) string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.Warn("Rate limiter unavailable", "error", err)
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down :("})
			return
		}
		c.Next()
	}
}

// ClientIPKey limits per client address.
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}
