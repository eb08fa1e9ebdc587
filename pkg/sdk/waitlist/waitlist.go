// Package waitlist is the typed client for the public join form and the admin waitlist table.
package waitlist

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/landing-api/internal/models"
	"github.com/akeren/landing-api/pkg/constants"
	"github.com/akeren/landing-api/pkg/sdk/transport"
)

const (
	joinEndpoint  = "/api/v1/public/waitlist/join"
	countEndpoint = "/api/v1/public/waitlist/count"
	adminEndpoint = "/api/v1/waitlist/admin"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"Email", "Date", "Status", "Queue Position", "UTM Source"}

type Entry struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
	IPAddress     string `json:"ip_address,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	UTMSource     string `json:"utm_source,omitempty"`
	UTMMedium     string `json:"utm_medium,omitempty"`
	UTMCampaign   string `json:"utm_campaign,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type JoinRequest struct {
	Email       string `json:"email"`
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
}

type EmailResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// JoinResult is also the body of a 409, with Success false.
type JoinResult struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	WaitlistEntry *Entry       `json:"waitlist_entry"`
	EmailSent     bool         `json:"email_sent"`
	EmailResult   *EmailResult `json:"email_result"`
}

type EntriesPage struct {
	Items   []Entry `json:"items"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Pages   int     `json:"pages"`
	HasNext bool    `json:"has_next"`
	HasPrev bool    `json:"has_prev"`
}

type StatusResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Count struct {
	Total int64 `json:"total"`
}

type Client struct {
	transport *transport.Client
}

func NewClient(t *transport.Client) *Client {
	return &Client{transport: t}
}

func (c *Client) Join(ctx context.Context, entry JoinRequest, sendEmail bool) transport.Response[JoinResult] {
	endpoint := joinEndpoint + "?send_email=" + strconv.FormatBool(sendEmail)
	return transport.CallEnvelope[JoinResult](ctx, c.transport, http.MethodPost, endpoint, entry, nil)
}

func (c *Client) Count(ctx context.Context) transport.Response[Count] {
	return transport.CallEnvelope[Count](ctx, c.transport, http.MethodGet, countEndpoint, nil, nil)
}

// GetWaitlistEntries needs an admin session; callers should treat Status 401 as "sign in first".
func (c *Client) GetWaitlistEntries(ctx context.Context, page, limit int) transport.Response[EntriesPage] {
	return c.ListEntries(ctx, ListOptions{Page: page, Limit: limit})
}

type ListOptions struct {
	Page   int
	Limit  int
	Status string
	Search string
}

func (c *Client) ListEntries(ctx context.Context, opts ListOptions) transport.Response[EntriesPage] {
	if opts.Page < 1 {
		opts.Page = constants.DefaultPage
	}
	if opts.Limit < 1 {
		opts.Limit = constants.DefaultPageSize
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(opts.Page))
	query.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}

	endpoint := adminEndpoint + "/list?" + query.Encode()
	return transport.CallEnvelope[EntriesPage](ctx, c.transport, http.MethodGet, endpoint, nil, nil)
}

// ListAll pages through every entry matching opts, stopping at the first failed page.
func (c *Client) ListAll(ctx context.Context, opts ListOptions) ([]Entry, transport.Response[EntriesPage]) {
	opts.Page = constants.DefaultPage
	opts.Limit = constants.MaxPageSize

	var entries []Entry
	for {
		resp := c.ListEntries(ctx, opts)
		if !resp.OK() || resp.Data == nil {
			return entries, resp
		}
		entries = append(entries, resp.Data.Items...)
		if !resp.Data.HasNext {
			return entries, resp
		}
		opts.Page++
	}
}

func (c *Client) UpdateWaitlistStatus(ctx context.Context, email, status string) transport.Response[StatusResult] {
	endpoint := adminEndpoint + "/" + url.PathEscape(email) + "/status"
	body := map[string]string{"status": status}
	return transport.CallEnvelope[StatusResult](ctx, c.transport, http.MethodPatch, endpoint, body, nil)
}

// NextStatus is the only transition an admin may apply to an entry in status.
func NextStatus(status string) (string, bool) {
	return models.NextWaitlistStatus(status)
}

// FilterEntries keeps entries whose email or UTM source contains search (case-insensitive)
// and, when status is set, whose status matches exactly. Order is preserved.
func FilterEntries(entries []Entry, search, status string) []Entry {
	needle := strings.ToLower(strings.TrimSpace(search))

	filtered := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if status != "" && entry.Status != status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(entry.Email), needle) &&
			!strings.Contains(strings.ToLower(entry.UTMSource), needle) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func WriteCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, entry := range entries {
		row := []string{
			entry.Email,
			formatDate(entry.CreatedAt),
			entry.Status,
			strconv.Itoa(entry.QueuePosition),
			entry.UTMSource,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatDate(value string) string {
	parsed, err := time.Parse(constants.RFC3339DateTimeFormat, value)
	if err != nil {
		return value
	}
	return parsed.UTC().Format(time.DateOnly)
}
