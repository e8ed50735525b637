package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"chocoapi/internal/httputil"
	"chocoapi/internal/logging"
)

// RateLimiter is a fixed-window limiter keyed by client IP and backed by
// Redis, so every instance of the API shares the same counters.
type RateLimiter struct {
	client   redis.Cmdable
	requests int
	window   time.Duration
	prefix   string
}

// NewRateLimiter allows requests per window for each client. Keys are
// namespaced by prefix, e.g. "ratelimit:register".
func NewRateLimiter(client redis.Cmdable, prefix string, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client:   client,
		requests: requests,
		window:   window,
		prefix:   prefix,
	}
}

// Middleware rejects clients over the limit with 429. Redis failures let the
// request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter, err := rl.allow(r.Context(), clientIP(r))
		if err != nil {
			logging.FromContext(r.Context()).Warn("rate limiter unavailable, allowing request", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			httputil.WriteTooManyRequests(w, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow counts one request for clientID and reports whether it is within the
// limit, along with the time left in the current window.
func (rl *RateLimiter) allow(ctx context.Context, clientID string) (bool, time.Duration, error) {
	key := fmt.Sprintf("%s:%s", rl.prefix, clientID)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = rl.window
	}
	return incr.Val() <= int64(rl.requests), remaining, nil
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware has
// already replaced it with X-Real-IP or X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
