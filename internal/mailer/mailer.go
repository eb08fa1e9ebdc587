package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is a single outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// SendResult is the delivery outcome reported back to API callers.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sender delivers a Message. A non-nil error always comes with a failed SendResult.
type Sender interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

var ErrMisconfigured = errors.New("mailer: misconfigured")

type Config struct {
	Enabled        bool
	MailgunDomain  string
	MailgunAPIKey  string
	MailgunAPIBase string // region endpoint, empty keeps the Mailgun default
	FromEmail      string
	FromName       string
	ProductName    string
}

func (c *Config) IsConfigured() bool {
	return c != nil && c.MailgunDomain != "" && c.MailgunAPIKey != ""
}

func (c *Config) validate() error {
	if c.MailgunDomain == "" {
		return fmt.Errorf("%w: MAILGUN_DOMAIN is required", ErrMisconfigured)
	}
	if c.MailgunAPIKey == "" {
		return fmt.Errorf("%w: MAILGUN_API_KEY is required", ErrMisconfigured)
	}
	if c.FromEmail == "" {
		return fmt.Errorf("%w: EMAIL_FROM_ADDRESS is required", ErrMisconfigured)
	}
	return nil
}

func formatAddress(name, email string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
