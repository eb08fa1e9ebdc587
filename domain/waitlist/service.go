package waitlist

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/mailer"
	"github.com/akeren/landing-api/internal/models"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/akeren/landing-api/pkg/retry"
	"github.com/akeren/landing-api/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	countCacheKey        = "waitlist:count"
	defaultCountCacheTTL = 30 * time.Second
)

var tracer = otel.Tracer("github.com/akeren/landing-api/domain/waitlist")

type WaitlistService interface {
	// Join adds the email to the end of the queue and optionally sends a confirmation.
	// Mail failures are reported in the response, never as an error.
	Join(ctx context.Context, req *JoinWaitlistRequest, sendEmail bool) (*JoinResponse, error)

	// Count returns the number of entries, served from cache when one is configured.
	Count(ctx context.Context) (*CountResponse, error)

	// ListEntries returns one page of entries ordered by queue position.
	ListEntries(ctx context.Context, query ListEntriesQuery) (*PaginatedEntriesResponse, error)

	// UpdateStatus accepts only the next forward status for the entry.
	UpdateStatus(ctx context.Context, email, status string) (*UpdateStatusResponse, error)
}

// CountCache is the subset of the application cache the waitlist uses.
type CountCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type ServiceConfig struct {
	Mailer        mailer.Sender
	ProductName   string
	Cache         CountCache
	CountCacheTTL time.Duration
	// JoinRetry repeats a join that lost the race for a queue position.
	JoinRetry retry.RetryPolicy
	Metrics   prometheus.Registerer
}

type waitlistService struct {
	logger        *log.Logger
	repository    WaitlistRepository
	mailer        mailer.Sender
	productName   string
	cache         CountCache
	countCacheTTL time.Duration
	joinRetry     retry.RetryPolicy
	metrics       *serviceMetrics
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, cfg *ServiceConfig) WaitlistService {
	if cfg == nil {
		cfg = &ServiceConfig{}
	}

	s := &waitlistService{
		logger:        logger.WithScope("waitlist"),
		repository:    repository,
		mailer:        cfg.Mailer,
		productName:   cfg.ProductName,
		cache:         cfg.Cache,
		countCacheTTL: cfg.CountCacheTTL,
		joinRetry:     cfg.JoinRetry,
		metrics:       newServiceMetrics(cfg.Metrics),
	}

	if s.productName == "" {
		s.productName = mailer.DefaultProductName
	}
	if s.countCacheTTL <= 0 {
		s.countCacheTTL = defaultCountCacheTTL
	}
	if s.joinRetry == nil {
		s.joinRetry = NewJoinRetryPolicy()
	}

	return s
}

// NewJoinRetryPolicy retries position races only; any other failure surfaces at once.
func NewJoinRetryPolicy() retry.RetryPolicy {
	return retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
		Multiplier:  2,
		Retryable:   isQueuePositionRace,
	})
}

func isQueuePositionRace(err error) bool {
	return errors.Is(err, ErrQueuePositionTaken)
}

func (s *waitlistService) Join(ctx context.Context, req *JoinWaitlistRequest, sendEmail bool) (*JoinResponse, error) {
	ctx, span := tracer.Start(ctx, "waitlist.Join", trace.WithAttributes(attribute.Bool("waitlist.send_email", sendEmail)))
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("Join received nil request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	entry := ToWaitlistEntryModel(req)
	if entry.Email == "" {
		return nil, apperrors.NewInvalidRequestError("Email is required", ErrEmptyEmail)
	}

	var created *models.WaitlistEntry
	err := s.joinRetry.Execute(ctx, func() error {
		candidate := *entry
		result, createErr := s.repository.CreateEntry(ctx, &candidate)
		if createErr != nil {
			return createErr
		}
		created = result
		return nil
	})
	if err != nil {
		return nil, s.joinFailed(ctx, span, entry.Email, err)
	}

	s.metrics.joins.WithLabelValues("joined").Inc()
	s.invalidateCount(ctx)
	span.SetAttributes(attribute.Int("waitlist.queue_position", created.QueuePosition))
	logger.Info("Waitlist entry created", "email", created.Email, "queue_position", created.QueuePosition)

	entryResponse := ToWaitlistEntryResponse(created)
	response := &JoinResponse{
		Success:       true,
		Message:       "You're on the waitlist!",
		WaitlistEntry: &entryResponse,
	}

	if sendEmail {
		response.EmailSent, response.EmailResult = s.sendConfirmation(ctx, created)
	}

	return response, nil
}

func (s *waitlistService) joinFailed(ctx context.Context, span trace.Span, email string, err error) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	span.RecordError(err)
	span.SetStatus(codes.Error, "join failed")

	switch {
	case errors.Is(err, ErrAlreadyJoined):
		s.metrics.joins.WithLabelValues("duplicate").Inc()
		logger.Info("Duplicate waitlist join", "email", email)
		return err
	case errors.Is(err, ErrQueuePositionTaken):
		s.metrics.joins.WithLabelValues("contended").Inc()
		logger.Warn("Gave up reserving a queue position", "email", email, "error", err)
		return apperrors.NewServiceUnavailableError("The waitlist is busy, please try again", err)
	default:
		s.metrics.joins.WithLabelValues("error").Inc()
		logger.Error("Failed to create waitlist entry", "email", email, "error", err)
		return err
	}
}

func (s *waitlistService) sendConfirmation(ctx context.Context, entry *models.WaitlistEntry) (bool, *mailer.SendResult) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if s.mailer == nil {
		return false, &mailer.SendResult{Success: false, Error: mailer.ErrDeliveryNotConfigured}
	}

	msg, err := mailer.WaitlistConfirmation(s.productName, entry.Email, entry.QueuePosition)
	if err != nil {
		logger.Error("Failed to render confirmation email", "error", err)
		return false, &mailer.SendResult{Success: false, Error: "unable to render confirmation email"}
	}

	result, err := s.mailer.Send(ctx, msg)
	if err != nil {
		logger.Warn("Confirmation email not delivered", "email", entry.Email, "error", err)
		if result == nil {
			result = &mailer.SendResult{Success: false, Error: err.Error()}
		}
		return false, result
	}

	if result == nil {
		result = &mailer.SendResult{Success: false, Error: "no delivery result"}
	}
	return result.Success, result
}

func (s *waitlistService) Count(ctx context.Context) (*CountResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, countCacheKey)
		if err != nil {
			logger.Warn("Waitlist count cache read failed", "error", err)
		} else if total, parseErr := strconv.ParseInt(cached, 10, 64); cached != "" && parseErr == nil {
			return &CountResponse{Total: total}, nil
		}
	}

	total, err := s.repository.CountEntries(ctx)
	if err != nil {
		logger.Error("Failed to count waitlist entries", "error", err)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, countCacheKey, strconv.FormatInt(total, 10), s.countCacheTTL); err != nil {
			logger.Warn("Waitlist count cache write failed", "error", err)
		}
	}

	return &CountResponse{Total: total}, nil
}

func (s *waitlistService) invalidateCount(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, countCacheKey); err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Waitlist count cache invalidation failed", "error", err)
	}
}

func (s *waitlistService) ListEntries(ctx context.Context, query ListEntriesQuery) (*PaginatedEntriesResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if query.Status != "" && !models.IsValidWaitlistStatus(query.Status) {
		return nil, apperrors.NewInvalidRequestError("Unknown status filter", ErrUnknownStatus)
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		return nil, apperrors.NewInvalidRequestError("limit must be positive", nil)
	}

	entries, total, err := s.repository.ListEntries(ctx, ListFilter{
		Status: query.Status,
		Search: query.Search,
		Limit:  query.Limit,
		Offset: (query.Page - 1) * query.Limit,
	})
	if err != nil {
		logger.Error("Failed to list waitlist entries", "error", err)
		return nil, err
	}

	response := ToPaginatedEntriesResponse(entries, total, query.Page, query.Limit)
	return &response, nil
}

func (s *waitlistService) UpdateStatus(ctx context.Context, email, status string) (*UpdateStatusResponse, error) {
	ctx, span := tracer.Start(ctx, "waitlist.UpdateStatus", trace.WithAttributes(attribute.String("waitlist.status", status)))
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	email = utils.NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.NewInvalidRequestError("Email is required", ErrEmptyEmail)
	}
	if !models.IsValidWaitlistStatus(status) {
		return nil, apperrors.NewInvalidRequestError("Unknown status: "+status, ErrUnknownStatus)
	}

	entry, err := s.repository.FindByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	next, ok := models.NextWaitlistStatus(entry.Status)
	if !ok || next != status {
		logger.Info("Rejected waitlist status transition", "email", email, "from", entry.Status, "to", status)
		span.SetStatus(codes.Error, "invalid transition")
		return nil, apperrors.NewConflictError(
			"Cannot change status from "+entry.Status+" to "+status,
			ErrInvalidTransition,
		)
	}

	if err := s.repository.UpdateStatus(ctx, email, entry.Status, status); err != nil {
		logger.Error("Failed to update waitlist status", "email", email, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	s.metrics.transitions.WithLabelValues(entry.Status, status).Inc()
	logger.Info("Waitlist status updated", "email", email, "from", entry.Status, "to", status)

	return &UpdateStatusResponse{
		Success: true,
		Message: "Status updated to " + status,
	}, nil
}
