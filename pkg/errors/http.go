package errors

import (
	"errors"
)

var statusByType = map[string]int{
	ErrorTypeNotFound:            StatusNotFound,
	ErrorTypeInvalidRequest:      StatusBadRequest,
	ErrorTypeConflict:            StatusConflict,
	ErrorTypeUnauthorized:        StatusUnauthorized,
	ErrorTypeForbidden:           StatusForbidden,
	ErrorTypeTooManyRequests:     StatusTooManyRequests,
	ErrorTypeRateLimitExceeded:   StatusTooManyRequests,
	ErrorTypeRequestTimeout:      StatusRequestTimeout,
	ErrorTypeMethodNotAllowed:    StatusMethodNotAllowed,
	ErrorTypeNoContent:           StatusNoContent,
	ErrorTypeServiceUnavailable:  StatusServiceUnavailable,
	ErrorTypeDatabaseError:       StatusInternalServerError,
	ErrorTypeInternalServerError: StatusInternalServerError,
}

func HTTPStatusCode(err error) int {
	if err == nil {
		return StatusInternalServerError
	}

	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}

	return StatusInternalServerError
}

func GetHumanReadableMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	// SECURITY: avoid leaking internal error strings (DB errors, stack messages, etc.)
	return "An unexpected error occurred"
}
