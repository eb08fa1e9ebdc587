package mailer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/mailgun/mailgun-go/v4"
)

const mailgunSendTimeout = 30 * time.Second

// deliverFunc hands one rendered message to the provider and returns its message id.
type deliverFunc func(ctx context.Context, from string, msg Message) (string, error)

// MailgunSender sends through the Mailgun HTTP API.
type MailgunSender struct {
	cfg     *Config
	logger  *log.Logger
	deliver deliverFunc
}

// NewMailgunSender returns nil when Mailgun is not configured.
func NewMailgunSender(cfg *Config, logger *log.Logger) *MailgunSender {
	if !cfg.IsConfigured() {
		return nil
	}

	client := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunAPIBase != "" {
		client.SetAPIBase(cfg.MailgunAPIBase)
	}

	return newMailgunSender(cfg, logger, func(ctx context.Context, from string, msg Message) (string, error) {
		message := client.NewMessage(from, msg.Subject, msg.Text, formatAddress(msg.ToName, msg.To))
		if msg.HTML != "" {
			message.SetHtml(msg.HTML)
		}

		_, id, err := client.Send(ctx, message)
		return id, err
	})
}

func newMailgunSender(cfg *Config, logger *log.Logger, deliver deliverFunc) *MailgunSender {
	return &MailgunSender{
		cfg:     cfg,
		logger:  logger.WithScope("mailer.mailgun"),
		deliver: deliver,
	}
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if !s.cfg.Enabled {
		return &SendResult{Success: false, Error: "email sending is disabled"}, nil
	}

	if err := s.cfg.validate(); err != nil {
		return &SendResult{Success: false, Error: err.Error()}, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, mailgunSendTimeout)
	defer cancel()

	messageID, err := s.deliver(sendCtx, formatAddress(s.cfg.FromName, s.cfg.FromEmail), msg)
	if err != nil {
		s.logger.Error("Failed to send email", "to", msg.To, "error", err)
		return &SendResult{Success: false, Error: err.Error()}, err
	}

	s.logger.Info("Email sent", "to", msg.To, "message_id", messageID)
	return &SendResult{Success: true, MessageID: messageID}, nil
}

// IsRetryableMailgunError treats throttling, 5xx and network failures as transient.
func IsRetryableMailgunError(err error) bool {
	if err == nil || errors.Is(err, ErrMisconfigured) || errors.Is(err, context.Canceled) {
		return false
	}

	var unexpected *mailgun.UnexpectedResponseError
	if errors.As(err, &unexpected) {
		return unexpected.Actual == http.StatusTooManyRequests || unexpected.Actual >= http.StatusInternalServerError
	}

	return true
}
