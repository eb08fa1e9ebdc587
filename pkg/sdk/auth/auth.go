package auth

import (
	"context"
	"net/http"

	"github.com/akeren/landing-api/pkg/sdk/transport"
)

const (
	loginEndpoint  = "/api/v1/auth/login"
	logoutEndpoint = "/api/v1/auth/logout"
	meEndpoint     = "/api/v1/auth/me"
)

type User struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type Session struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

type Client struct {
	transport *transport.Client
}

func NewClient(t *transport.Client) *Client {
	return &Client{transport: t}
}

// Login stores the session cookie in the shared jar and also sends the token as a bearer
// header, so a session survives servers that mark the cookie Secure.
func (c *Client) Login(ctx context.Context, email, password string) transport.Response[Session] {
	body := map[string]string{"email": email, "password": password}

	resp := transport.CallEnvelope[Session](ctx, c.transport, http.MethodPost, loginEndpoint, body, nil)
	if resp.OK() && resp.Data != nil {
		c.transport.SetBearerToken(resp.Data.AccessToken)
	}
	return resp
}

func (c *Client) Logout(ctx context.Context) transport.Response[struct{}] {
	c.transport.SetBearerToken("")
	return transport.CallEnvelope[struct{}](ctx, c.transport, http.MethodPost, logoutEndpoint, nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) transport.Response[User] {
	return transport.CallEnvelope[User](ctx, c.transport, http.MethodGet, meEndpoint, nil, nil)
}
