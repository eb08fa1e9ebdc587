package mailer

import (
	"context"

	"github.com/akeren/landing-api/internal/log"
)

const ErrDeliveryNotConfigured = "email delivery not configured"

// NoopSender reports every message as undelivered.
type NoopSender struct {
	logger *log.Logger
}

func NewNoopSender(logger *log.Logger) *NoopSender {
	return &NoopSender{logger: logger.WithScope("mailer.noop")}
}

func (s *NoopSender) Send(_ context.Context, msg Message) (*SendResult, error) {
	s.logger.Debug("Email delivery skipped", "to", msg.To, "subject", msg.Subject)
	return &SendResult{Success: false, Error: ErrDeliveryNotConfigured}, nil
}
