package config

import (
	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/pkg/auth"
	"github.com/akeren/landing-api/pkg/utils"
)

const AuthCookieName = "access_token"

// AuthConfig holds the single admin account and its session token settings.
// Tokens is nil when auth is not configured; admin routes then reject every request.
type AuthConfig struct {
	AdminEmail        string
	AdminPasswordHash string
	CookieName        string
	CookieSecure      bool
	CookieDomain      string
	Tokens            *auth.TokenManager
}

func (ac *AuthConfig) IsConfigured() bool {
	return ac != nil && ac.Tokens != nil && ac.AdminEmail != "" && ac.AdminPasswordHash != ""
}

func NewAuthConfig(logger *log.Logger) *AuthConfig {
	cfg := &AuthConfig{
		AdminEmail:        utils.GetEnvTrimmed("ADMIN_EMAIL"),
		AdminPasswordHash: sanitizeEnv(utils.GetEnvTrimmed("ADMIN_PASSWORD_HASH")),
		CookieName:        AuthCookieName,
		CookieSecure:      utils.GetEnvBool("AUTH_COOKIE_SECURE", isProductionEnv(GetAppEnv())),
		CookieDomain:      utils.GetEnvTrimmed("AUTH_COOKIE_DOMAIN"),
	}

	secret := sanitizeEnv(utils.GetEnvTrimmed("AUTH_JWT_SECRET"))
	if secret == "" {
		logger.Warn("AUTH_JWT_SECRET not set; admin endpoints will reject all requests")
		return cfg
	}

	tokens, err := auth.NewTokenManager(secret, utils.GetEnvDuration("AUTH_TOKEN_TTL", auth.DefaultTokenTTL))
	if err != nil {
		logger.Error("Invalid AUTH_JWT_SECRET; admin endpoints will reject all requests", "error", err)
		return cfg
	}
	cfg.Tokens = tokens

	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set; admin login disabled")
	}

	return cfg
}
