package config

import (
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/mailer"
	"github.com/akeren/landing-api/pkg/circuitbreaker"
	"github.com/akeren/landing-api/pkg/retry"
	"github.com/akeren/landing-api/pkg/utils"
)

func NewMailerConfig() *mailer.Config {
	return &mailer.Config{
		Enabled:        utils.GetEnvBool("EMAIL_ENABLED", true),
		MailgunDomain:  sanitizeEnv(utils.GetEnvTrimmed("MAILGUN_DOMAIN")),
		MailgunAPIKey:  sanitizeEnv(utils.GetEnvTrimmed("MAILGUN_API_KEY")),
		MailgunAPIBase: utils.GetEnvTrimmed("MAILGUN_API_BASE"),
		FromEmail:      utils.GetEnvTrimmed("EMAIL_FROM_ADDRESS"),
		FromName:       utils.GetEnvTrimmed("EMAIL_FROM_NAME"),
		ProductName:    utils.GetEnvTrimmedOrDefault("EMAIL_PRODUCT_NAME", mailer.DefaultProductName),
	}
}

// NewMailer returns a Mailgun sender behind a breaker and retry policy, or a no-op sender.
func NewMailer(logger *log.Logger, cfg *mailer.Config) mailer.Sender {
	mailgunSender := mailer.NewMailgunSender(cfg, logger)
	if mailgunSender == nil || !cfg.Enabled {
		logger.Info("Email delivery not configured; using no-op sender")
		return mailer.NewNoopSender(logger)
	}

	breaker := circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
		Name:             "mailgun",
		FailureThreshold: utils.GetEnvPositiveInt("EMAIL_BREAKER_FAILURES", 5),
		RecoveryTimeout:  utils.GetEnvDuration("EMAIL_BREAKER_COOLDOWN", time.Minute),
		SuccessThreshold: 1,
		IsFailure:        mailer.IsRetryableMailgunError,
		OnStateChange: func(name string, from, to circuitbreaker.CircuitState) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	policy := retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: utils.GetEnvPositiveInt("EMAIL_MAX_ATTEMPTS", 3),
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Multiplier:  2,
		Retryable:   mailer.IsRetryableMailgunError,
	})

	logger.Info("Email delivery via Mailgun", "domain", cfg.MailgunDomain, "from", cfg.FromEmail)
	return mailer.NewResilientSender(mailgunSender, breaker, policy, logger)
}
