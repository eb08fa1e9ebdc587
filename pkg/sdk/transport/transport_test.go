package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{BaseURL: server.URL})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestDo_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := New(Config{BaseURL: baseURL})

	assert.NotPanics(t, func() {
		resp := client.Do(context.Background(), http.MethodGet, "/anything", nil, nil)
		assert.Equal(t, 0, resp.Status)
		assert.NotEmpty(t, resp.Error)
		assert.Nil(t, resp.Data)
	})
}

func TestDo_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		hasData bool
	}{
		{"detail wins", http.StatusUnauthorized, `{"detail":"Unauthorized"}`, "Unauthorized", true},
		{"message fallback", http.StatusConflict, `{"code":409,"message":"Email already on the waitlist"}`, "Email already on the waitlist", true},
		{"status text fallback", http.StatusBadRequest, `{}`, "Bad Request", true},
		{"unparseable body", http.StatusInternalServerError, `{oops`, "Internal Server Error", false},
		{"unknown status", 599, `{}`, "Request failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			resp := client.Do(context.Background(), http.MethodGet, "/x", nil, nil)

			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.wantErr, resp.Error)
			assert.Equal(t, tt.hasData, resp.Data != nil)
			assert.False(t, resp.OK())
		})
	}
}

func TestDo_NonJSONResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	resp := client.Do(context.Background(), http.MethodGet, "/x", nil, nil)

	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.Equal(t, "Bad Gateway", resp.Error)
	assert.Nil(t, resp.Data)
}

func TestDo_MalformedJSONOnSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	})

	resp := client.Do(context.Background(), http.MethodGet, "/x", nil, nil)

	assert.True(t, resp.OK())
	assert.Nil(t, resp.Data)
}

func TestDo_SendsBodyAndHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "yes", r.Header.Get("X-Test"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@example.com", body["email"])

		writeJSON(w, http.StatusCreated, `{"code":201,"data":{"email":"a@example.com"},"message":"created"}`)
	})

	type payload struct {
		Email string `json:"email"`
	}

	resp := CallEnvelope[payload](context.Background(), client, http.MethodPost, "/join",
		map[string]string{"email": "a@example.com"}, map[string]string{"X-Test": "yes"})

	require.True(t, resp.OK())
	require.NotNil(t, resp.Data)
	assert.Equal(t, "a@example.com", resp.Data.Email)
}

func TestCall_DecodesWholeBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":200,"message":"ok"}`)
	})

	resp := Call[struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}](context.Background(), client, http.MethodGet, "/x", nil, nil)

	require.NotNil(t, resp.Data)
	assert.Equal(t, 200, resp.Data.Code)
	assert.Equal(t, "ok", resp.Data.Message)
}

func TestUnwrap_KeepsErrorBodyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, `{"code":409,"data":{"success":false},"message":"Already joined"}`)
	})

	resp := CallEnvelope[struct {
		Success bool `json:"success"`
	}](context.Background(), client, http.MethodPost, "/join", nil, nil)

	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "Already joined", resp.Error)
	require.NotNil(t, resp.Data)
	assert.False(t, resp.Data.Success)
}

func TestDo_CookieJarCarriesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok", Path: "/"})
			writeJSON(w, http.StatusOK, `{}`)
			return
		}
		if c, err := r.Cookie("access_token"); err != nil || c.Value != "tok" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Authentication required"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	first := New(Config{BaseURL: server.URL, Jar: jar})
	second := New(Config{BaseURL: server.URL, Jar: jar})

	assert.Equal(t, http.StatusUnauthorized, second.Do(context.Background(), http.MethodGet, "/me", nil, nil).Status)
	require.True(t, first.Do(context.Background(), http.MethodPost, "/login", nil, nil).OK())
	assert.True(t, second.Do(context.Background(), http.MethodGet, "/me", nil, nil).OK())
}

func TestDo_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := client.Do(ctx, http.MethodGet, "/x", nil, nil)

	assert.Equal(t, 0, resp.Status)
	assert.NotEmpty(t, resp.Error)
}
