package router

import (
	"net/http"
	"strconv"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/pkg/constants"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/google/uuid"
)

func GetLogger(ctx *RequestContext) *log.Logger {
	if logger := ctx.Request.Context().Value(log.LoggerKeyForContext); logger != nil {
		if l, ok := logger.(*log.Logger); ok {
			return l
		}
	}

	baseLogger := log.NewLoggerWithJSONOutput()
	return baseLogger.WithCorrelationID(ctx.Request.Context())
}

func OKResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
	}
}

func CreatedResult(data any, resourceName string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusCreated,
		Data:       data,
		Message:    resourceName + " created successfully",
	}
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusTooManyRequests,
		Data:       data,
		Message:    "Too Many Requests",
	}
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusBadRequest,
		Data:       payload,
		Message:    message,
	}
}

func UnauthorizedResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusUnauthorized,
		Data:       nil,
		Message:    message,
	}
}

func NotFoundResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusNotFound,
		Data:       nil,
		Message:    message,
	}
}

func InternalServerErrorResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusInternalServerError,
		Data:       nil,
		Message:    message,
	}
}

func ConflictResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusConflict,
		Data:       nil,
		Message:    message,
	}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}

func ForbiddenResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusForbidden,
		Data:       nil,
		Message:    message,
	}
}

// ResultFromError maps an AppError to its status and a client-safe message.
func ResultFromError(err error) *ServiceResult {
	return ErrorResult(
		apperrors.HTTPStatusCode(err),
		apperrors.GetHumanReadableMessage(err),
		nil,
	)
}

func ValidationFailedResult(err error, model any) *ServiceResult {
	if validationErrors := apperrors.FormatValidationErrors(err, model); len(validationErrors) > 0 {
		return BadRequestResult("Invalid request payload", validationErrors)
	}
	return BadRequestResult("Invalid request body", nil)
}

func ParseUUIDParam(ctx *RequestContext, paramName string) (string, *ServiceResult) {
	raw := ctx.Param(paramName)

	id, err := uuid.Parse(raw)
	if err != nil {
		GetLogger(ctx).Warn("Invalid ID parameter", "param", paramName, "value", raw, "error", err)
		return "", BadRequestResult("Invalid ID parameter", nil)
	}

	return id.String(), nil
}

// ParsePagination reads ?page and ?limit. Missing or invalid values fall back to defaults; limit is capped.
func ParsePagination(ctx *RequestContext) Pagination {
	p := Pagination{Page: constants.DefaultPage, Limit: constants.DefaultPageSize}

	if page, err := strconv.Atoi(ctx.Query("page")); err == nil && page > 0 {
		p.Page = page
	}
	if limit, err := strconv.Atoi(ctx.Query("limit")); err == nil && limit > 0 {
		p.Limit = min(limit, constants.MaxPageSize)
	}

	return p
}
