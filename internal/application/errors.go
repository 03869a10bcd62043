package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) IsRetryable() bool {
	return e.Code == ErrCodeGatewayUnavailable || e.Code == ErrCodeRequestProcessing
}

const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeSeatUnavailable     = "SEAT_UNAVAILABLE"
	ErrCodeGatewayDecline      = "GATEWAY_DECLINE"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodePersistence         = "PERSISTENCE_ERROR"
	ErrCodeIdempotencyMismatch = "IDEMPOTENCY_MISMATCH"
	ErrCodeRequestProcessing   = "REQUEST_PROCESSING"
	ErrCodeConcurrentAttempt   = "CONCURRENT_ATTEMPT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// PersistenceMessage is shown when money moved but state could not be saved.
const PersistenceMessage = "We're confirming your payment, please contact support"

func NewValidationError(err error) *ServiceError {
	msg := "Invalid request"
	if err != nil {
		msg = err.Error()
	}
	return &ServiceError{
		Code:       ErrCodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewSeatUnavailableError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeSeatUnavailable,
		Message:    "No seats are available for this course",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

// NewGatewayDeclineError surfaces the processor's own reason.
func NewGatewayDeclineError(gwErr *GatewayError) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeGatewayDecline,
		Message:    gwErr.Message(),
		HTTPStatus: http.StatusPaymentRequired,
		Details: map[string]string{
			"response_code": gwErr.ResponseCode,
			"responsetext":  gwErr.ResponseText,
		},
		Err: gwErr,
	}
}

func NewGatewayUnavailableError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeGatewayUnavailable,
		Message:    "Payment processor is unavailable, please retry",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInvalidTransitionError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidTransition,
		Message:    "Invalid transition",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func NewPersistenceError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodePersistence,
		Message:    PersistenceMessage,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewIdempotencyMismatchError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeIdempotencyMismatch,
		Message:    "Idempotency key reused with different request parameters",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewRequestProcessingError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeRequestProcessing,
		Message:    "Request is being processed. Please retry in a moment.",
		HTTPStatus: http.StatusConflict,
	}
}

func NewConcurrentAttemptError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeConcurrentAttempt,
		Message:    "Another payment attempt for this enrollment is in progress",
		HTTPStatus: http.StatusConflict,
		Err:        err,
	}
}

func NewNotFoundError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
		Err:        err,
	}
}

func NewUnauthorizedError(reason string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnauthorized,
		Message:    reason,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
