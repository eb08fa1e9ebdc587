package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/landing-api/config"
	"github.com/akeren/landing-api/config/router"
	"github.com/akeren/landing-api/internal/log"
	pkgauth "github.com/akeren/landing-api/pkg/auth"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testEmail    = "admin@example.com"
	testPassword = "correct horse battery staple"
)

func newTestAuthConfig(t *testing.T) *config.AuthConfig {
	t.Helper()

	hash, err := pkgauth.HashPassword(testPassword)
	require.NoError(t, err)

	tokens, err := pkgauth.NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	return &config.AuthConfig{
		AdminEmail:        testEmail,
		AdminPasswordHash: hash,
		CookieName:        config.AuthCookieName,
		Tokens:            tokens,
	}
}

func TestAuthService_Login(t *testing.T) {
	cfg := newTestAuthConfig(t)
	service := NewAuthService(log.NewDiscardLogger(), cfg)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		resp, err := service.Login(context.Background(), &LoginRequest{Email: "Admin@Example.com", Password: testPassword})

		require.NoError(t, err)
		assert.Equal(t, testEmail, resp.User.Email)
		assert.Equal(t, pkgauth.RoleAdmin, resp.User.Role)
		assert.Equal(t, "Bearer", resp.TokenType)

		principal, err := service.Authenticate(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, testEmail, principal.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(context.Background(), &LoginRequest{Email: testEmail, Password: "nope"})

		assert.ErrorIs(t, err, pkgauth.ErrInvalidCredentials)
		assert.Equal(t, apperrors.StatusUnauthorized, apperrors.HTTPStatusCode(err))
	})

	t.Run("wrong email", func(t *testing.T) {
		_, err := service.Login(context.Background(), &LoginRequest{Email: "other@example.com", Password: testPassword})

		assert.Equal(t, apperrors.StatusUnauthorized, apperrors.HTTPStatusCode(err))
	})

	t.Run("unconfigured auth refuses login", func(t *testing.T) {
		unconfigured := NewAuthService(log.NewDiscardLogger(), &config.AuthConfig{})

		_, err := unconfigured.Login(context.Background(), &LoginRequest{Email: testEmail, Password: testPassword})

		assert.Equal(t, apperrors.StatusServiceUnavailable, apperrors.HTTPStatusCode(err))
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	cfg := newTestAuthConfig(t)
	service := NewAuthService(log.NewDiscardLogger(), cfg)

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Authenticate("not-a-jwt")
		assert.Equal(t, apperrors.StatusUnauthorized, apperrors.HTTPStatusCode(err))
	})

	t.Run("non-admin role is forbidden", func(t *testing.T) {
		token, _, err := cfg.Tokens.Issue("viewer@example.com", "viewer")
		require.NoError(t, err)

		_, err = service.Authenticate(token)
		assert.Equal(t, apperrors.StatusForbidden, apperrors.HTTPStatusCode(err))
	})

	t.Run("no token manager fails closed", func(t *testing.T) {
		_, err := NewAuthService(log.NewDiscardLogger(), &config.AuthConfig{}).Authenticate("anything")
		assert.ErrorIs(t, err, pkgauth.ErrNotConfigured)
	})
}

func newAuthRouter(t *testing.T, cfg *config.AuthConfig) *router.RouterService {
	t.Helper()

	rs := router.CreateRouterService(log.NewDiscardLogger(), nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewAuthController(NewAuthService(log.NewDiscardLogger(), cfg), cfg))
	return rs
}

func doJSON(t *testing.T, rs *router.RouterService, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == config.AuthCookieName {
			return c
		}
	}
	return nil
}

func TestAuthController_LoginMeLogout(t *testing.T) {
	rs := newAuthRouter(t, newTestAuthConfig(t))

	login := doJSON(t, rs, http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, login.Code)

	cookie := sessionCookie(login)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	me := doJSON(t, rs, http.MethodGet, "/api/v1/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, me.Code)

	var envelope struct {
		Data UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &envelope))
	assert.Equal(t, testEmail, envelope.Data.Email)

	logout := doJSON(t, rs, http.MethodPost, "/api/v1/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, logout.Code)
	cleared := sessionCookie(logout)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAuthController_BearerHeader(t *testing.T) {
	cfg := newTestAuthConfig(t)
	rs := newAuthRouter(t, cfg)

	token, _, err := cfg.Tokens.Issue(testEmail, pkgauth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthController_MeWithoutSession(t *testing.T) {
	rs := newAuthRouter(t, newTestAuthConfig(t))

	w := doJSON(t, rs, http.MethodGet, "/api/v1/auth/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":401`)
}

func TestAuthController_BadCredentials(t *testing.T) {
	rs := newAuthRouter(t, newTestAuthConfig(t))

	w := doJSON(t, rs, http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: testEmail, Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, sessionCookie(w))
}

func TestRequireAdmin_FailsClosedWhenUnconfigured(t *testing.T) {
	cfg := &config.AuthConfig{}
	rs := newAuthRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
