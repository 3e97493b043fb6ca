package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	cache "github.com/simp-lee/cache"
	"golang.org/x/time/rate"

	"github.com/simp-lee/backoffice/internal/pkg"
)

const defaultLimiterIdleTTL = 10 * time.Minute

// LimiterStore holds one limiter per client. cache.CacheInterface and
// cache.Group both satisfy it.
type LimiterStore interface {
	GetWithExpiration(key string) (any, time.Time, bool)
	SetWithExpiration(key string, value any, expiration time.Duration)
	GetOrSetFuncWithExpiration(key string, f func() any, expiration time.Duration) any
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// IdleTTL is how long an idle client's limiter is kept. Zero means 10 minutes.
	IdleTTL time.Duration
	// Store keeps the limiters. Nil creates a private cache that lives as
	// long as the process.
	Store LimiterStore
}

type limiters struct {
	store   LimiterStore
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
}

func newLimiters(cfg RateLimitConfig) *limiters {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = defaultLimiterIdleTTL
	}
	store := cfg.Store
	if store == nil {
		store = cache.NewCache(cache.Options{CleanupInterval: ttl})
	}
	return &limiters{store: store, limit: rate.Limit(cfg.RPS), burst: cfg.Burst, idleTTL: ttl}
}

// get returns the limiter for key. A client keeps its limiter while it sends
// at least one request per idleTTL; the expiry is pushed out once less than
// half of it is left.
func (l *limiters) get(key string) *rate.Limiter {
	if v, expires, ok := l.store.GetWithExpiration(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			if time.Until(expires) < l.idleTTL/2 {
				l.store.SetWithExpiration(key, lim, l.idleTTL)
			}
			return lim
		}
	}
	v := l.store.GetOrSetFuncWithExpiration(key, func() any {
		return rate.NewLimiter(l.limit, l.burst)
	}, l.idleTTL)
	return v.(*rate.Limiter)
}

// RateLimit returns a gin middleware that limits requests per client IP.
// Rejected requests get 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return rateLimit(newLimiters(cfg))
}

func rateLimit(set *limiters) gin.HandlerFunc {
	retryAfter := "1"
	if set.limit > 0 && set.limit < 1 {
		retryAfter = strconv.Itoa(int(math.Ceil(1 / float64(set.limit))))
	}

	return func(c *gin.Context) {
		if set.get(c.ClientIP()).Allow() {
			c.Next()
			return
		}

		slog.WarnContext(c.Request.Context(), "rate limit exceeded",
			slog.String("client_ip", c.ClientIP()),
			slog.String("path", c.Request.URL.Path),
		)
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, pkg.Response{
			Code:    http.StatusTooManyRequests,
			Message: "too many requests",
		})
	}
}
