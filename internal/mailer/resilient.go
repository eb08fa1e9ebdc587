package mailer

import (
	"context"
	"errors"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/pkg/circuitbreaker"
	"github.com/akeren/landing-api/pkg/retry"
)

// ResilientSender retries transient failures and stops calling a provider that keeps failing.
type ResilientSender struct {
	next    Sender
	breaker circuitbreaker.CircuitBreaker
	retry   retry.RetryPolicy
	logger  *log.Logger
}

func NewResilientSender(next Sender, breaker circuitbreaker.CircuitBreaker, policy retry.RetryPolicy, logger *log.Logger) *ResilientSender {
	return &ResilientSender{
		next:    next,
		breaker: breaker,
		retry:   policy,
		logger:  logger.WithScope("mailer"),
	}
}

func (s *ResilientSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	var result *SendResult

	err := s.breaker.Call(func() error {
		return s.retry.Execute(ctx, func() error {
			res, sendErr := s.next.Send(ctx, msg)
			result = res
			return sendErr
		})
	})

	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			s.logger.Warn("Mailer circuit open; skipping send", "to", msg.To)
			return &SendResult{Success: false, Error: "email provider temporarily unavailable"}, err
		}
		if result == nil || result.Success {
			result = &SendResult{Success: false, Error: err.Error()}
		}
		return result, err
	}

	if result == nil {
		result = &SendResult{Success: false, Error: "no delivery result"}
	}
	return result, nil
}

// Healthy reports false while the breaker is open.
func (s *ResilientSender) Healthy() bool {
	return s.breaker.State() != circuitbreaker.Open
}

func (s *ResilientSender) BreakerSnapshot() circuitbreaker.Snapshot {
	return s.breaker.Snapshot()
}
