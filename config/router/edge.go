package router

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/akeren/landing-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultMaxBodyBytes = int64(1 << 20)
	defaultHSTSMaxAge   = int64(31536000)

	corsAllowedMethods = "POST, OPTIONS, GET, PUT, PATCH, DELETE"
	corsAllowedHeaders = "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Correlation-ID"
)

// EdgeConfig holds the browser-facing policy applied before routing: body
// limits, CORS for the landing site and admin dashboard, and HSTS.
type EdgeConfig struct {
	MaxBodyBytes       int64
	AllowedOrigins     []string
	HSTSEnabled        bool
	HSTSMaxAge         int64
	HSTSIncludeSubdoms bool
	TrustedProxies     []string
}

// LoadEdgeConfig reads MAX_REQUEST_BODY_BYTES, CORS_ALLOWED_ORIGIN,
// HSTS_ENABLED, HSTS_MAX_AGE, HSTS_INCLUDE_SUBDOMAINS and TRUSTED_PROXIES.
// HSTS defaults to on in production.
func LoadEdgeConfig() EdgeConfig {
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))

	return EdgeConfig{
		MaxBodyBytes:       positiveInt64Env("MAX_REQUEST_BODY_BYTES", defaultMaxBodyBytes),
		AllowedOrigins:     splitList(os.Getenv("CORS_ALLOWED_ORIGIN")),
		HSTSEnabled:        boolEnv("HSTS_ENABLED", appEnv == "production" || appEnv == "prod"),
		HSTSMaxAge:         positiveInt64Env("HSTS_MAX_AGE", defaultHSTSMaxAge),
		HSTSIncludeSubdoms: boolEnv("HSTS_INCLUDE_SUBDOMAINS", true),
		TrustedProxies:     parseTrustedProxies(os.Getenv("TRUSTED_PROXIES")),
	}
}

func (e EdgeConfig) originAllowed(origin string) bool {
	return slices.Contains(e.AllowedOrigins, "*") || slices.Contains(e.AllowedOrigins, origin)
}

func (e EdgeConfig) hstsValue() string {
	value := fmt.Sprintf("max-age=%d", e.HSTSMaxAge)
	if e.HSTSIncludeSubdoms {
		value += "; includeSubDomains"
	}
	return value
}

// parseTrustedProxies maps "*" to every address and drops blank entries.
func parseTrustedProxies(v string) []string {
	if strings.TrimSpace(v) == "*" {
		return []string{"0.0.0.0/0", "::/0"}
	}
	return splitList(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func positiveInt64Env(key string, fallback int64) int64 {
	parsed, err := strconv.ParseInt(utils.GetEnvTrimmed(key), 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func boolEnv(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(utils.GetEnvTrimmed(key))
	if err != nil {
		return fallback
	}
	return parsed
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	edge := routerService.edge
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if edge.HSTSEnabled && isHTTPS(c) {
			h.Set("Strict-Transport-Security", edge.hstsValue())
		}
		c.Next()
	}
}

// isHTTPS also honours X-Forwarded-Proto from a TLS-terminating proxy.
func isHTTPS(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	maxBytes := routerService.edge.MaxBodyBytes
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(
				http.StatusRequestEntityTooLarge,
				"Request payload too large",
				nil,
			).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	edge := routerService.edge
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || len(edge.AllowedOrigins) == 0 {
			c.Next()
			return
		}

		if !edge.originAllowed(origin) {
			routerService.logger.Warn("CORS origin not allowed", "origin", origin)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(apperrors.StatusNoContent)
			return
		}
		c.Next()
	}
}
