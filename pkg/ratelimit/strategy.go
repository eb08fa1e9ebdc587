package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

const DefaultKeyPrefix = "landing:ratelimit:"

type Logger interface {
	Error(msg string, args ...interface{})
}

// RateLimiter decides whether the caller identified by key is over its budget.
type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	IsLimited(ctx context.Context, key string) (bool, error)
	Close() error
}

// InMemoryRateLimiter keeps one token bucket per key. Only suitable for a single replica.
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt time.Time
	nowFn   func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		buckets:  make(map[string]*bucket),
		nowFn:    time.Now,
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(_ context.Context, key string) (bool, error) {
	if key == "" {
		key = "__anonymous__"
	}

	now := r.nowFn()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		every := rate.Every(r.window / time.Duration(max(r.requests, 1)))
		b = &bucket{limiter: rate.NewLimiter(every, r.requests)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	if now.After(r.sweepAt) {
		r.sweep(now)
	}

	return !b.limiter.AllowN(now, 1), nil
}

// sweep drops buckets idle for two windows. Caller holds mu.
func (r *InMemoryRateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-2 * r.window)
	for key, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, key)
		}
	}
	r.sweepAt = now.Add(r.window)
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}

// KEYS[1] bucket key; ARGV: now(ms), window(ms), limit, ttl(s), member.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
	return 1
end

redis.call('ZADD', key, now, ARGV[5])
redis.call('EXPIRE', key, tonumber(ARGV[4]))
return 0
`)

// RedisRateLimiter is a sliding-window log shared by every replica.
type RedisRateLimiter struct {
	client    redis.Scripter
	requests  int
	window    time.Duration
	keyPrefix string
	logger    Logger
}

func NewRedisRateLimiter(client redis.Scripter, requests int, window time.Duration, logger Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		requests:  requests,
		window:    window,
		keyPrefix: DefaultKeyPrefix,
		logger:    logger,
	}
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *RedisRateLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	fullKey := key
	if !strings.HasPrefix(key, r.keyPrefix) {
		fullKey = r.keyPrefix + key
	}

	member, err := newMemberID()
	if err != nil {
		return false, fmt.Errorf("rate limiter member id: %w", err)
	}

	ttl := int64((2 * r.window).Seconds())
	if ttl < 1 {
		ttl = 1
	}

	result, err := slidingWindowScript.Run(ctx, r.client, []string{fullKey},
		time.Now().UnixMilli(), r.window.Milliseconds(), r.requests, ttl, member).Int64()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script failed", "key", fullKey, "error", err)
		}
		// The caller decides whether an unavailable backend admits the request.
		return false, fmt.Errorf("rate limiter redis error: %w", err)
	}

	return result == 1, nil
}

// Close is a no-op; the redis client belongs to the application config.
func (r *RedisRateLimiter) Close() error {
	return nil
}

func newMemberID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + hex.EncodeToString(buf), nil
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Redis    *redis.Client // nil selects the in-memory limiter
	Logger   Logger
}

func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	if config.Redis != nil {
		return NewRedisRateLimiter(config.Redis, config.Requests, config.Window, config.Logger)
	}
	return NewInMemoryRateLimiter(config.Requests, config.Window)
}
