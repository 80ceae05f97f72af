package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig sets the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64
	Burst int
	// Idle clients are forgotten after TTL.
	TTL time.Duration
	// Skipper bypasses the limiter, e.g. for probes.
	Skipper func(c echo.Context) bool
}

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// RateLimit rejects clients, keyed by real IP, that exceed cfg with 429.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
		lastGC   = time.Now()
	)

	allow := func(key string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(lastGC) > cfg.TTL {
			for k, v := range visitors {
				if now.Sub(v.seen) > cfg.TTL {
					delete(visitors, k)
				}
			}
			lastGC = now
		}

		v, ok := visitors[key]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)}
			visitors[key] = v
		}
		v.seen = now
		return v.limiter.AllowN(now, 1)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}
			if !allow(c.RealIP(), time.Now()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "Too many requests",
					"code":  "ERR_RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}
