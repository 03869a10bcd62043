package domain

import (
	"errors"
	"time"
)

type Course struct {
	ID             string
	Title          string
	Price          Money
	AvailableSpots int
	MaxStudents    int
	StartsAt       time.Time
	CreatedAt      time.Time
}

func NewCourse(id, title string, price Money, maxStudents int, startsAt time.Time) (*Course, error) {
	if id == "" {
		return nil, errors.New("course ID is required")
	}
	if title == "" {
		return nil, NewMissingRequiredFieldError("title")
	}
	if price.Amount <= 0 {
		return nil, NewInvalidAmountError(price.String())
	}
	if maxStudents <= 0 {
		return nil, errors.New("max students must be positive")
	}
	return &Course{
		ID:             id,
		Title:          title,
		Price:          price,
		AvailableSpots: maxStudents,
		MaxStudents:    maxStudents,
		StartsAt:       startsAt,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (c *Course) HasSeat() bool {
	return c.AvailableSpots > 0
}

// ReminderTarget is a confirmed enrollment whose course starts soon.
type ReminderTarget struct {
	EnrollmentID string
	ContactEmail string
	StudentID    string
	CourseTitle  string
	StartsAt     time.Time
}

type AttemptKind string

const (
	AttemptCharge AttemptKind = "charge"
	AttemptRefund AttemptKind = "refund"
)

type AttemptOutcome string

const (
	OutcomeInFlight    AttemptOutcome = "in_flight"
	OutcomeApproved    AttemptOutcome = "approved"
	OutcomeDeclined    AttemptOutcome = "declined"
	OutcomeUnavailable AttemptOutcome = "unavailable"
	OutcomeUnknown     AttemptOutcome = "unknown"
	OutcomeFailed      AttemptOutcome = "failed"
)

// PaymentAttempt is one caller request against the gateway, keyed by the
// caller's idempotency key. The key doubles as the gateway order id.
type PaymentAttempt struct {
	Key           string
	EnrollmentID  string
	Kind          AttemptKind
	RequestHash   string
	Outcome       AttemptOutcome
	TransactionID *string
	AuthCode      *string
	ErrorCode     *string
	ErrorMessage  *string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

func (a *PaymentAttempt) IsInFlight() bool {
	return a.Outcome == OutcomeInFlight
}

// Succeeded reports whether the gateway approved the attempt.
func (a *PaymentAttempt) Succeeded() bool {
	return a.Outcome == OutcomeApproved
}
