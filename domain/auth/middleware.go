package auth

import (
	"net/http"
	"strings"

	"github.com/akeren/landing-api/config/router"
	pkgauth "github.com/akeren/landing-api/pkg/auth"
	apperrors "github.com/akeren/landing-api/pkg/errors"
)

// RequireAdmin accepts the session cookie or an Authorization: Bearer header.
// Every request is rejected when auth is not configured.
func RequireAdmin(service AuthService, cookieName string) router.MiddlewareFunc {
	return func(c *router.RequestContext) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, router.UnauthorizedResult("Authentication required").ToJSON())
			return
		}

		principal, err := service.Authenticate(token)
		if err != nil {
			router.GetLogger(c).Warn("Rejected admin request", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(apperrors.HTTPStatusCode(err), router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			).ToJSON())
			return
		}

		c.Request = c.Request.WithContext(pkgauth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func tokenFromRequest(c *router.RequestContext, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}
