package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter decides whether a request may proceed right now.
type rateLimiter interface {
	Allow() bool
}

// retryHinter is implemented by limiters that can tell how long until the next token.
type retryHinter interface {
	RetryAfter() time.Duration
}

type tokenBucket struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) *tokenBucket {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (b *tokenBucket) Allow() bool {
	if b == nil || b.limiter == nil {
		return true
	}
	return b.limiter.Allow()
}

func (b *tokenBucket) RetryAfter() time.Duration {
	missing := 1 - b.limiter.Tokens()
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(b.limiter.Limit()) * float64(time.Second))
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", retryAfterSeconds(limiter))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "quote rate limit exceeded", "retry after the interval in the Retry-After header")
	})
}

// retryAfterSeconds rounds up to whole seconds with a minimum of one.
func retryAfterSeconds(limiter rateLimiter) string {
	seconds := 1
	if h, ok := limiter.(retryHinter); ok {
		if s := int(math.Ceil(h.RetryAfter().Seconds())); s > seconds {
			seconds = s
		}
	}
	return strconv.Itoa(seconds)
}
