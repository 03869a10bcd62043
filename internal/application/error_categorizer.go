package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
)

// ErrorCategory represents the nature of an error for retry logic
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryPermanent      ErrorCategory = "PERMANENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for retry and logging purposes
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeValidation, ErrCodeIdempotencyMismatch, ErrCodeNotFound, ErrCodeUnauthorized:
			return CategoryClientError
		case ErrCodeSeatUnavailable, ErrCodeInvalidTransition, ErrCodeConcurrentAttempt:
			return CategoryBusinessRule
		case ErrCodeGatewayDecline:
			return CategoryPermanent
		case ErrCodeGatewayUnavailable, ErrCodeRequestProcessing:
			return CategoryTransient
		case ErrCodePersistence, ErrCodeInternal:
			return CategoryInfrastructure
		}
	}

	if gwErr, ok := IsGatewayError(err); ok {
		switch gwErr.Kind {
		case GatewayKindUnavailable:
			return CategoryTransient
		case GatewayKindInvalidRequest:
			return CategoryClientError
		case GatewayKindProtocol:
			return CategoryInfrastructure
		default:
			return CategoryPermanent
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSeatUnavailable),
		errors.Is(err, domain.ErrAttemptInFlight),
		errors.Is(err, postgres.ErrStaleWrite):
		return CategoryBusinessRule
	case errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCard),
		errors.Is(err, domain.ErrEnrollmentNotFound),
		errors.Is(err, domain.ErrCourseNotFound):
		return CategoryClientError
	}

	return CategoryTransient
}

// IsRetryable returns true if the error category suggests retry
func IsRetryable(err error) bool {
	category := CategorizeError(err)
	return category == CategoryTransient || category == CategoryInfrastructure
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCard):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEnrollmentNotFound),
		errors.Is(err, domain.ErrCourseNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSeatUnavailable),
		errors.Is(err, domain.ErrAttemptInFlight),
		errors.Is(err, postgres.ErrStaleWrite),
		errors.Is(err, postgres.ErrDuplicateAttemptKey):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}

	if gwErr, ok := IsGatewayError(err); ok {
		switch gwErr.Kind {
		case GatewayKindDecline:
			return http.StatusPaymentRequired
		case GatewayKindInvalidRequest:
			return http.StatusBadRequest
		default:
			return http.StatusServiceUnavailable
		}
	}

	return http.StatusInternalServerError
}

// ToErrorCode clear error code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	switch {
	case errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCard):
		return ErrCodeValidation
	case errors.Is(err, domain.ErrEnrollmentNotFound),
		errors.Is(err, domain.ErrCourseNotFound):
		return ErrCodeNotFound
	case errors.Is(err, domain.ErrSeatUnavailable):
		return ErrCodeSeatUnavailable
	case errors.Is(err, domain.ErrInvalidTransition):
		return ErrCodeInvalidTransition
	case errors.Is(err, domain.ErrAttemptInFlight),
		errors.Is(err, postgres.ErrStaleWrite):
		return ErrCodeConcurrentAttempt
	case errors.Is(err, postgres.ErrDuplicateAttemptKey):
		return ErrCodeRequestProcessing
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeGatewayUnavailable
	}

	if gwErr, ok := IsGatewayError(err); ok {
		switch gwErr.Kind {
		case GatewayKindDecline:
			return ErrCodeGatewayDecline
		case GatewayKindInvalidRequest:
			return ErrCodeValidation
		default:
			return ErrCodeGatewayUnavailable
		}
	}

	return ErrCodeInternal
}

// UserMessage is the text safe to show to the person paying.
func UserMessage(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Message
	}
	if gwErr, ok := IsGatewayError(err); ok && gwErr.Kind == GatewayKindDecline {
		return gwErr.Message()
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "An internal error occurred"
}
