// Package articles mirrors the public and admin article endpoints.
package articles

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/akeren/landing-api/pkg/sdk/transport"
)

const (
	publicEndpoint = "/api/v1/public/articles"
	adminEndpoint  = "/api/v1/articles"
)

type Article struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	Status      string   `json:"status"`
	PublishedAt *string  `json:"published_at"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type ArticleInput struct {
	Kind     string   `json:"kind"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Content  string   `json:"content,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Author   string   `json:"author,omitempty"`
	Status   string   `json:"status,omitempty"`
}

type Page struct {
	Items   []Article `json:"items"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Pages   int       `json:"pages"`
	HasNext bool      `json:"has_next"`
	HasPrev bool      `json:"has_prev"`
}

// ListOptions zero values are omitted from the query.
type ListOptions struct {
	Kind     string
	Category string
	Tag      string
	Status   string
	Page     int
	Limit    int
}

func (o ListOptions) encode() string {
	query := url.Values{}
	for key, value := range map[string]string{
		"kind":     o.Kind,
		"category": o.Category,
		"tag":      o.Tag,
		"status":   o.Status,
	} {
		if value != "" {
			query.Set(key, value)
		}
	}
	if o.Page > 0 {
		query.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		query.Set("limit", strconv.Itoa(o.Limit))
	}

	if len(query) == 0 {
		return ""
	}
	return "?" + query.Encode()
}

type Client struct {
	transport *transport.Client
}

func NewClient(t *transport.Client) *Client {
	return &Client{transport: t}
}

func (c *Client) ListPublished(ctx context.Context, opts ListOptions) transport.Response[Page] {
	opts.Status = ""
	return transport.CallEnvelope[Page](ctx, c.transport, http.MethodGet, publicEndpoint+opts.encode(), nil, nil)
}

func (c *Client) GetPublished(ctx context.Context, slug string) transport.Response[Article] {
	endpoint := publicEndpoint + "/" + url.PathEscape(slug)
	return transport.CallEnvelope[Article](ctx, c.transport, http.MethodGet, endpoint, nil, nil)
}

func (c *Client) List(ctx context.Context, opts ListOptions) transport.Response[Page] {
	return transport.CallEnvelope[Page](ctx, c.transport, http.MethodGet, adminEndpoint+opts.encode(), nil, nil)
}

func (c *Client) Get(ctx context.Context, id string) transport.Response[Article] {
	return transport.CallEnvelope[Article](ctx, c.transport, http.MethodGet, adminEndpoint+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Create(ctx context.Context, input ArticleInput) transport.Response[Article] {
	return transport.CallEnvelope[Article](ctx, c.transport, http.MethodPost, adminEndpoint, input, nil)
}

func (c *Client) Update(ctx context.Context, id string, input ArticleInput) transport.Response[Article] {
	return transport.CallEnvelope[Article](ctx, c.transport, http.MethodPut, adminEndpoint+"/"+url.PathEscape(id), input, nil)
}

func (c *Client) Delete(ctx context.Context, id string) transport.Response[struct{}] {
	return transport.CallEnvelope[struct{}](ctx, c.transport, http.MethodDelete, adminEndpoint+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Categories(ctx context.Context) transport.Response[[]string] {
	return transport.CallEnvelope[[]string](ctx, c.transport, http.MethodGet, adminEndpoint+"/categories", nil, nil)
}

func (c *Client) Tags(ctx context.Context) transport.Response[[]string] {
	return transport.CallEnvelope[[]string](ctx, c.transport, http.MethodGet, adminEndpoint+"/tags", nil, nil)
}
