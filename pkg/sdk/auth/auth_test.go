package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akeren/landing-api/pkg/sdk/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginSendsBearerUntilLogout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case loginEndpoint:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code": 200,
				"data": Session{User: User{Email: "admin@example.com", Role: "admin"}, AccessToken: "tok", TokenType: "Bearer"},
			})
		case meEndpoint:
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":401,"message":"Authentication required"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "data": User{Email: "admin@example.com", Role: "admin"}})
		case logoutEndpoint:
			_, _ = w.Write([]byte(`{"code":200,"data":null,"message":"Signed out"}`))
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(transport.New(transport.Config{BaseURL: server.URL}))
	ctx := context.Background()

	assert.Equal(t, http.StatusUnauthorized, client.CurrentUser(ctx).Status)

	login := client.Login(ctx, "admin@example.com", "secret")
	require.True(t, login.OK())
	assert.Equal(t, "tok", login.Data.AccessToken)

	me := client.CurrentUser(ctx)
	require.True(t, me.OK())
	assert.Equal(t, "admin@example.com", me.Data.Email)

	require.True(t, client.Logout(ctx).OK())
	assert.Equal(t, http.StatusUnauthorized, client.CurrentUser(ctx).Status)
}
