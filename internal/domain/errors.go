package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so sentinels below can be
// used with errors.Is regardless of the message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Retryable interface for errors that can be retried
type Retryable interface {
	IsRetryable() bool
}

const (
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeSeatUnavailable      = "SEAT_UNAVAILABLE"
	ErrCodeEnrollmentNotFound   = "ENROLLMENT_NOT_FOUND"
	ErrCodeCourseNotFound       = "COURSE_NOT_FOUND"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidCard          = "INVALID_CARD"
	ErrCodeAttemptInFlight      = "ATTEMPT_IN_FLIGHT"
)

var (
	ErrInvalidTransition    = &DomainError{Code: ErrCodeInvalidTransition, Message: "invalid transition"}
	ErrSeatUnavailable      = &DomainError{Code: ErrCodeSeatUnavailable, Message: "no seats available"}
	ErrEnrollmentNotFound   = &DomainError{Code: ErrCodeEnrollmentNotFound, Message: "enrollment not found"}
	ErrCourseNotFound       = &DomainError{Code: ErrCodeCourseNotFound, Message: "course not found"}
	ErrInvalidAmount        = &DomainError{Code: ErrCodeInvalidAmount, Message: "invalid amount"}
	ErrMissingRequiredField = &DomainError{Code: ErrCodeMissingRequiredField, Message: "missing required field"}
	ErrInvalidCard          = &DomainError{Code: ErrCodeInvalidCard, Message: "invalid card details"}
	ErrAttemptInFlight      = &DomainError{Code: ErrCodeAttemptInFlight, Message: "another payment attempt is in progress"}
)

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidTransitionError(from, to EnrollmentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewSeatUnavailableError(courseID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeSeatUnavailable,
		Message: fmt.Sprintf("course %s has no available seats", courseID),
	}
}

func NewEnrollmentNotFoundError(ref string) *DomainError {
	return &DomainError{
		Code:    ErrCodeEnrollmentNotFound,
		Message: fmt.Sprintf("enrollment %s not found", ref),
	}
}

func NewCourseNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCourseNotFound,
		Message: fmt.Sprintf("course %s not found", id),
	}
}

func NewInvalidAmountError(amount string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %s", amount),
	}
}

func NewInvalidCardError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCard,
		Message: reason,
	}
}

func NewAttemptInFlightError(enrollmentID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeAttemptInFlight,
		Message: fmt.Sprintf("enrollment %s already has a payment attempt in progress", enrollmentID),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
