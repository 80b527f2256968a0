package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/safetravels/internal/infra/config"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// errorHandlingMiddleware renders the last recorded error once the chain
// has run, unless a handler already wrote a response.
func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		apiErr := toAPIError(c.Errors.Last().Err)
		requestID := c.GetString(requestIDKey)
		level := slog.LevelWarn
		if apiErr.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			"code", apiErr.code,
			"status", apiErr.status,
			"path", c.Request.URL.Path,
			"request_id", requestID,
			"error", apiErr.cause,
		)
		c.JSON(apiErr.status, errorBody{Error: errorDetail{
			Code:      apiErr.code,
			Message:   apiErr.message,
			RequestID: requestID,
		}})
	}
}

// rateLimitMiddleware throttles each fleet client. Authenticated requests
// are keyed by token subject so a depot sharing one NAT address is not
// throttled as a single caller; anonymous requests fall back to client IP.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newClientLimiter(float64(cfg.RequestsPerMinute), float64(cfg.Burst), time.Now)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims, ok := claimsFrom(c); ok && claims.Subject != "" {
			key = "sub:" + claims.Subject
		}
		wait, ok := limiter.take(key)
		if ok {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "client", key, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		fail(c, newAPIError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

// clientLimiter is a token bucket per client key. Idle buckets are swept
// at most once per idle window.
type clientLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perSecond float64
	burst     float64
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newClientLimiter(perMinute, burst float64, now func() time.Time) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		buckets:   make(map[string]*bucket),
		perSecond: perMinute / 60,
		burst:     burst,
		idle:      5 * time.Minute,
		lastSweep: now(),
		now:       now,
	}
}

// take spends one token for key. When the bucket is empty it reports how
// long until the next token arrives.
func (l *clientLimiter) take(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, seen: now}
		l.buckets[key] = b
	}
	b.tokens = math.Min(l.burst, b.tokens+now.Sub(b.seen).Seconds()*l.perSecond)
	b.seen = now
	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	missing := 1 - b.tokens
	return time.Duration(missing / l.perSecond * float64(time.Second)), false
}
