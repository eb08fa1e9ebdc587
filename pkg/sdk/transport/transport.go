// Package transport performs API calls and folds every outcome, including
// transport failures, into a Response value.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	networkErrorMessage = "Network error"
	requestFailed       = "Request failed"
	defaultTimeout      = 30 * time.Second
)

// Response is the uniform result of a call. Status is 0 when no HTTP response was received.
type Response[T any] struct {
	Status int
	Data   *T
	Error  string
}

func (r Response[T]) OK() bool {
	return r.Error == "" && r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

type Config struct {
	BaseURL string
	// Jar is shared by every client built on the same Config, so a login carries over.
	Jar     http.CookieJar
	Timeout time.Duration
}

type Client struct {
	http *resty.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	if cfg.Jar != nil {
		client.SetCookieJar(cfg.Jar)
	}

	return &Client{http: client}
}

// SetBearerToken sends token on every later request. An empty token stops sending it.
func (c *Client) SetBearerToken(token string) {
	c.http.SetAuthToken(token)
}

// Do never returns an error; failures are reported through Response.Status and Response.Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, headers map[string]string) (result Response[json.RawMessage]) {
	defer func() {
		if r := recover(); r != nil {
			result = Response[json.RawMessage]{Error: fmt.Sprintf("%s: %v", networkErrorMessage, r)}
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	req := c.http.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return Response[json.RawMessage]{Error: networkError(err)}
	}

	status := resp.StatusCode()
	if !isJSON(resp.Header().Get("Content-Type")) {
		return Response[json.RawMessage]{Status: status, Error: statusText(status)}
	}

	result = Response[json.RawMessage]{Status: status}
	raw := resp.Body()
	if json.Valid(raw) && !isNull(raw) {
		data := json.RawMessage(raw)
		result.Data = &data
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		result.Error = errorMessage(raw, status)
	}

	return result
}

// Call decodes the whole response body into T.
func Call[T any](ctx context.Context, c *Client, method, endpoint string, body any, headers map[string]string) Response[T] {
	return Decode[T](c.Do(ctx, method, endpoint, body, headers))
}

// CallEnvelope decodes the data member of the API's {code, data, message} envelope into T.
func CallEnvelope[T any](ctx context.Context, c *Client, method, endpoint string, body any, headers map[string]string) Response[T] {
	return Unwrap[T](c.Do(ctx, method, endpoint, body, headers))
}

// Decode converts a raw response; a body that does not fit T leaves Data nil.
func Decode[T any](raw Response[json.RawMessage]) Response[T] {
	result := Response[T]{Status: raw.Status, Error: raw.Error}
	if raw.Data == nil {
		return result
	}

	var data T
	if err := json.Unmarshal(*raw.Data, &data); err == nil {
		result.Data = &data
	}
	return result
}

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func Unwrap[T any](raw Response[json.RawMessage]) Response[T] {
	result := Response[T]{Status: raw.Status, Error: raw.Error}
	if raw.Data == nil {
		return result
	}

	var env envelope
	if err := json.Unmarshal(*raw.Data, &env); err != nil || len(env.Data) == 0 || isNull(env.Data) {
		return result
	}

	var data T
	if err := json.Unmarshal(env.Data, &data); err == nil {
		result.Data = &data
	}
	return result
}

func errorMessage(raw []byte, status int) string {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if detail, ok := body.Detail.(string); ok && detail != "" {
			return detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return statusText(status)
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return requestFailed
}

func networkError(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return networkErrorMessage
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isNull(raw []byte) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
