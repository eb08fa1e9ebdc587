package factory

import (
	"time"

	"github.com/akeren/landing-api/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

// RateLimiterFactory hands out limiters that share one backend. The router
// owns the default budget; login and waitlist join ask for their own.
type RateLimiterFactory interface {
	CreateRateLimiter() ratelimit.RateLimiter
	CreateRateLimiterWith(requests int, window time.Duration) ratelimit.RateLimiter
	// Distributed reports whether limits are shared across replicas.
	Distributed() bool
}

type DefaultRateLimiterFactory struct {
	base ratelimit.RateLimitConfig
}

// NewDefaultRateLimiterFactory uses redis when client is non-nil and a
// per-process token bucket otherwise.
func NewDefaultRateLimiterFactory(requests int, window time.Duration, client *redis.Client, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	return &DefaultRateLimiterFactory{
		base: ratelimit.RateLimitConfig{
			Requests: requests,
			Window:   window,
			Redis:    client,
			Logger:   logger,
		},
	}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter() ratelimit.RateLimiter {
	return f.CreateRateLimiterWith(f.base.Requests, f.base.Window)
}

func (f *DefaultRateLimiterFactory) CreateRateLimiterWith(requests int, window time.Duration) ratelimit.RateLimiter {
	cfg := f.base
	cfg.Requests = requests
	cfg.Window = window
	return ratelimit.NewRateLimiter(&cfg)
}

func (f *DefaultRateLimiterFactory) Distributed() bool {
	return f.base.Redis != nil
}
