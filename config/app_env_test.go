package config

import (
	"testing"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAutoMigrateAllowed_AllowsDevLikeEnvs(t *testing.T) {
	allowed := []string{"", "dev", "development", "local", "test", "testing", "DEV", "  Local  "}

	for _, env := range allowed {
		env := env
		t.Run(env, func(t *testing.T) {
			if err := ValidateAutoMigrateAllowed(env); err != nil {
				t.Fatalf("expected no error for env %q, got %v", env, err)
			}
		})
	}
}

func TestValidateAutoMigrateAllowed_RejectsProdAndOtherEnvs(t *testing.T) {
	rejected := []string{"prod", "production", "staging", "preprod", " Production ", "qa"}

	for _, env := range rejected {
		env := env
		t.Run(env, func(t *testing.T) {
			if err := ValidateAutoMigrateAllowed(env); err == nil {
				t.Fatalf("expected error for env %q, got nil", env)
			}
		})
	}
}

func TestNewAppConfig_ReadsOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "250")
	t.Setenv("WAITLIST_JOIN_RATE_LIMIT", "3")
	t.Setenv("WAITLIST_COUNT_CACHE_TTL", "5s")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	cfg := NewAppConfig()

	assert.Equal(t, 250, cfg.RateLimitRequests)
	assert.Equal(t, 3, cfg.JoinRateLimitRequests)
	assert.Equal(t, 5*time.Second, cfg.WaitlistCountCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestNewAuthConfig_FailsClosedWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg := NewAuthConfig(log.NewDiscardLogger())

	assert.False(t, cfg.IsConfigured())
	assert.Nil(t, cfg.Tokens)
}

func TestNewAuthConfig_Configured(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "'0123456789abcdef0123456789abcdef'")
	t.Setenv("AUTH_TOKEN_TTL", "1h")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_COOKIE_SECURE", "")

	cfg := NewAuthConfig(log.NewDiscardLogger())

	require.True(t, cfg.IsConfigured())
	assert.Equal(t, time.Hour, cfg.Tokens.TTL())
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, AuthCookieName, cfg.CookieName)
}

func TestNewMailer_FallsBackToNoop(t *testing.T) {
	t.Setenv("MAILGUN_DOMAIN", "")
	t.Setenv("MAILGUN_API_KEY", "")

	sender := NewMailer(log.NewDiscardLogger(), NewMailerConfig())

	_, ok := sender.(*mailer.NoopSender)
	assert.True(t, ok)
}

func TestNewMailer_WrapsMailgun(t *testing.T) {
	t.Setenv("MAILGUN_DOMAIN", "mg.example.com")
	t.Setenv("MAILGUN_API_KEY", "key-abc123")
	t.Setenv("EMAIL_FROM_ADDRESS", "hello@example.com")
	t.Setenv("EMAIL_ENABLED", "true")

	sender := NewMailer(log.NewDiscardLogger(), NewMailerConfig())

	_, ok := sender.(*mailer.ResilientSender)
	assert.True(t, ok)
}

func TestParseOTLPEndpoint(t *testing.T) {
	hostport, path, insecure, err := parseOTLPEndpoint("http://collector:4318")
	require.NoError(t, err)
	assert.Equal(t, "collector:4318", hostport)
	assert.Equal(t, "/v1/traces", path)
	assert.True(t, insecure)

	_, _, _, err = parseOTLPEndpoint("grpc://collector:4317")
	assert.Error(t, err)

	_, _, _, err = parseOTLPEndpoint("collector:4318/v1/traces")
	assert.Error(t, err)
}

func TestSamplingRatio(t *testing.T) {
	assert.Equal(t, 0.25, samplingRatio("0.25"))
	assert.Equal(t, 1.0, samplingRatio(""))
	assert.Equal(t, 1.0, samplingRatio("1.5"))
	assert.Equal(t, 0.0, samplingRatio("0"))
}

func TestResourceAttributes(t *testing.T) {
	t.Setenv("APP_ENV", "Staging")
	t.Setenv("APP_VERSION", "1.4.0")

	attrs := resourceAttributes("landing-api")

	require.Len(t, attrs, 3)
	assert.Equal(t, "staging", attrs[1].Value.AsString())
	assert.Equal(t, "1.4.0", attrs[2].Value.AsString())
}

func TestCacheConfig(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_DB", "-1")

	cfg := NewCacheConfig()
	assert.False(t, cfg.IsConfigured())
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, DefaultCacheKeyPrefix, cfg.KeyPrefix)
	assert.Nil(t, cfg.NewCacheOrNil(log.NewDiscardLogger()))

	_, err := cfg.NewCache(log.NewDiscardLogger())
	assert.ErrorIs(t, err, ErrCacheNotConfigured)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	assert.True(t, NewCacheConfig().IsConfigured())
}
