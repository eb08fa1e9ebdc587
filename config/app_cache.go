package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/akeren/landing-api/internal/log"
	pkgredis "github.com/akeren/landing-api/pkg/redis"
	"github.com/akeren/landing-api/pkg/utils"
)

// Cache backs the waitlist count cache and, through GetClient, the shared rate limiter.
type Cache interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set uses ttl=0 for no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

const DefaultCacheKeyPrefix = "landing:"

var ErrCacheNotConfigured = errors.New("cache: neither REDIS_URL nor REDIS_HOST is set")

type CacheConfig struct {
	URL       string
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string
}

func NewCacheConfig() *CacheConfig {
	db, err := strconv.Atoi(utils.GetEnvTrimmed("REDIS_DB"))
	if err != nil || db < 0 {
		db = 0
	}

	return &CacheConfig{
		URL:       utils.GetEnvTrimmed("REDIS_URL"),
		Host:      os.Getenv("REDIS_HOST"),
		Port:      utils.GetEnvOrDefault("REDIS_PORT", "6379"),
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        db,
		KeyPrefix: utils.GetEnvTrimmedOrDefault("REDIS_KEY_PREFIX", DefaultCacheKeyPrefix),
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.URL != "" || cc.Host != ""
}

// NewCache connects to Redis. The returned cache has already answered a ping.
func (cc *CacheConfig) NewCache(logger *log.Logger) (Cache, error) {
	if !cc.IsConfigured() {
		return nil, ErrCacheNotConfigured
	}

	cache, err := pkgredis.NewRedisCache(&pkgredis.Config{
		URL:       cc.URL,
		Host:      cc.Host,
		Port:      cc.Port,
		Password:  cc.Password,
		DB:        cc.DB,
		KeyPrefix: cc.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cache (Redis) connected", "prefix", cc.KeyPrefix)
	return cache, nil
}

// NewCacheOrNil treats Redis as optional: without it the count cache is
// skipped and rate limiting stays in-process.
func (cc *CacheConfig) NewCacheOrNil(logger *log.Logger) Cache {
	if !cc.IsConfigured() {
		logger.Info("Cache (Redis) not configured; counts are read from the database and rate limits are per instance")
		return nil
	}

	cache, err := cc.NewCache(logger)
	if err != nil {
		logger.Warn("Continuing without cache", "error", err)
		return nil
	}
	return cache
}

func CloseCache(cache Cache, logger *log.Logger) error {
	if cache == nil {
		return nil
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close cache", "error", err)
		return err
	}

	logger.Info("Cache connection closed")
	return nil
}
