package auth

import (
	"net/http"
	"time"

	"github.com/akeren/landing-api/config"
	"github.com/akeren/landing-api/config/router"
	pkgauth "github.com/akeren/landing-api/pkg/auth"
)

const (
	loginRequestsPerMinute = 10
)

func NewAuthController(service AuthService, cfg *config.AuthConfig) *router.RESTController {
	cookieName := config.AuthCookieName
	if cfg != nil && cfg.CookieName != "" {
		cookieName = cfg.CookieName
	}

	return router.NewVersionedRESTController(
		"AuthController",
		"v1",
		"/auth",
		func(rs *router.RouterService, c *router.RESTController) {
			loginLimiter := rs.NewRateLimiter(loginRequestsPerMinute, time.Minute)

			rs.AddPostHandler(c, loginLimiter, "login", loginHandler(service, cfg, cookieName))
			rs.AddPostHandler(c, nil, "logout", logoutHandler(cfg, cookieName))
			rs.AddGetHandler(c, nil, "me", currentUserHandler(), RequireAdmin(service, cookieName))
		},
	)
}

func loginHandler(service AuthService, cfg *config.AuthConfig, cookieName string) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req LoginRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind login request", "error", err)
			return router.ValidationFailedResult(err, &req)
		}

		response, err := service.Login(ctx.Request.Context(), &req)
		if err != nil {
			return router.ResultFromError(err)
		}

		maxAge := int(time.Until(response.expiresAt).Seconds())
		setSessionCookie(ctx, cfg, cookieName, response.AccessToken, maxAge)

		return router.OKResult(response, "Signed in successfully")
	}
}

func logoutHandler(cfg *config.AuthConfig, cookieName string) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		setSessionCookie(ctx, cfg, cookieName, "", -1)
		return router.OKResult(nil, "Signed out successfully")
	}
}

func currentUserHandler() router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		principal, ok := pkgauth.PrincipalFromContext(ctx.Request.Context())
		if !ok {
			return router.UnauthorizedResult("Authentication required")
		}

		return router.OKResult(ToUserResponse(principal), "Current user retrieved successfully")
	}
}

func setSessionCookie(ctx *router.RequestContext, cfg *config.AuthConfig, name, value string, maxAge int) {
	secure, domain := false, ""
	if cfg != nil {
		secure, domain = cfg.CookieSecure, cfg.CookieDomain
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, value, maxAge, "/", domain, secure, true)
}
