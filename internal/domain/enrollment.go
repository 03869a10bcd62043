// Package domain encodes the enrollment lifecycle and the course seat inventory it consumes.
package domain

import (
	"errors"
	"slices"
	"time"
)

// EnrollmentStatus represents the current state of an enrollment in its lifecycle
type EnrollmentStatus string

const (
	StatusPending       EnrollmentStatus = "pending"
	StatusPaid          EnrollmentStatus = "paid"
	StatusPaymentFailed EnrollmentStatus = "payment_failed"
	StatusConfirmed     EnrollmentStatus = "confirmed"
	StatusCancelled     EnrollmentStatus = "cancelled"
	StatusRefunded      EnrollmentStatus = "refunded"
)

// PaymentState mirrors what the gateway last said about the money.
type PaymentState string

const (
	PaymentStateNone     PaymentState = "none"
	PaymentStateApproved PaymentState = "approved"
	PaymentStateDeclined PaymentState = "declined"
	PaymentStateRefunded PaymentState = "refunded"
)

type PaymentDetails struct {
	Amount        Money
	PaymentState  PaymentState
	TransactionID *string
	AuthCode      *string
	DeclineCode   *string
	DeclineReason *string
	RefundID      *string
}

// Decline describes a card rejection as reported by the gateway.
type Decline struct {
	Code          string
	Reason        string
	TransactionID string
}

// Transition is emitted for every accepted status change and drained by the
// caller once the change has been persisted.
type Transition struct {
	EnrollmentID string
	From         EnrollmentStatus
	To           EnrollmentStatus
	At           time.Time
}

type Enrollment struct {
	ID           string
	CourseID     string
	StudentID    string
	ParentID     string
	ContactEmail string
	Status       EnrollmentStatus
	Payment      PaymentDetails

	SeatReserved         bool
	NeedsReconciliation  bool
	ReconciliationReason *string

	InFlightAttempt *string
	InFlightSince   *time.Time
	ReminderSentAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	transitions []Transition
}

func NewEnrollment(
	id string,
	courseID string,
	studentID string,
	parentID string,
	contactEmail string,
	price Money,
) (*Enrollment, error) {
	if id == "" {
		return nil, errors.New("enrollment ID is required")
	}
	if courseID == "" {
		return nil, NewMissingRequiredFieldError("course ID")
	}
	if studentID == "" {
		return nil, NewMissingRequiredFieldError("student ID")
	}
	if parentID == "" {
		return nil, NewMissingRequiredFieldError("parent ID")
	}
	if contactEmail == "" {
		return nil, NewMissingRequiredFieldError("contact email")
	}

	now := time.Now().UTC()
	return &Enrollment{
		ID:           id,
		CourseID:     courseID,
		StudentID:    studentID,
		ParentID:     parentID,
		ContactEmail: contactEmail,
		Status:       StatusPending,
		Payment: PaymentDetails{
			Amount:       price,
			PaymentState: PaymentStateNone,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to EnrollmentStatus) bool {
	e := Enrollment{Status: from}
	return e.canTransitionTo(to) == nil
}

func (e *Enrollment) transition(target EnrollmentStatus) error {
	if err := e.canTransitionTo(target); err != nil {
		return err
	}
	now := time.Now().UTC()
	e.transitions = append(e.transitions, Transition{
		EnrollmentID: e.ID,
		From:         e.Status,
		To:           target,
		At:           now,
	})
	e.Status = target
	e.UpdatedAt = now
	return nil
}

// defines the statuses each status can move to; refunded and cancelled are terminal
func (e *Enrollment) canTransitionTo(target EnrollmentStatus) error {
	switch e.Status {
	case StatusPending:
		return e.allow(target, StatusPaid, StatusPaymentFailed)
	case StatusPaymentFailed:
		return e.allow(target, StatusPending)
	case StatusPaid:
		return e.allow(target, StatusConfirmed, StatusRefunded)
	case StatusConfirmed:
		return e.allow(target, StatusRefunded, StatusCancelled)
	}
	return NewInvalidTransitionError(e.Status, target)
}

func (e *Enrollment) allow(target EnrollmentStatus, allowed ...EnrollmentStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidTransitionError(e.Status, target)
}

// BeginPaymentAttempt claims the enrollment for a charge. A previously failed
// enrollment goes back to pending first.
func (e *Enrollment) BeginPaymentAttempt(attemptKey string, now time.Time) error {
	switch e.Status {
	case StatusPending:
	case StatusPaymentFailed:
		if err := e.transition(StatusPending); err != nil {
			return err
		}
	default:
		return NewInvalidTransitionError(e.Status, StatusPaid)
	}
	e.holdAttempt(attemptKey, now)
	return nil
}

// BeginRefund claims the enrollment for a refund without changing its status.
func (e *Enrollment) BeginRefund(attemptKey string, now time.Time) error {
	if err := e.canTransitionTo(StatusRefunded); err != nil {
		return err
	}
	e.holdAttempt(attemptKey, now)
	return nil
}

func (e *Enrollment) holdAttempt(attemptKey string, now time.Time) {
	e.InFlightAttempt = &attemptKey
	e.InFlightSince = &now
	e.UpdatedAt = now
}

// ReleaseAttempt drops the in-flight claim, leaving the status as it is.
func (e *Enrollment) ReleaseAttempt() {
	e.InFlightAttempt = nil
	e.InFlightSince = nil
	e.UpdatedAt = time.Now().UTC()
}

// MarkPaid records an approved charge.
func (e *Enrollment) MarkPaid(transactionID, authCode string) error {
	if transactionID == "" {
		return NewMissingRequiredFieldError("transaction ID")
	}
	if err := e.transition(StatusPaid); err != nil {
		return err
	}
	e.Payment.PaymentState = PaymentStateApproved
	e.Payment.TransactionID = &transactionID
	e.Payment.AuthCode = optional(authCode)
	e.Payment.DeclineCode = nil
	e.Payment.DeclineReason = nil
	e.ReleaseAttempt()
	return nil
}

// MarkPaymentFailed records a declined charge. The transaction id is kept only
// when the gateway returned one.
func (e *Enrollment) MarkPaymentFailed(d Decline) error {
	if err := e.transition(StatusPaymentFailed); err != nil {
		return err
	}
	e.Payment.PaymentState = PaymentStateDeclined
	e.Payment.TransactionID = optional(d.TransactionID)
	e.Payment.AuthCode = nil
	e.Payment.DeclineCode = optional(d.Code)
	e.Payment.DeclineReason = optional(d.Reason)
	e.ReleaseAttempt()
	return nil
}

// Confirm moves a paid enrollment to confirmed. Confirming twice is a no-op.
func (e *Enrollment) Confirm() error {
	if e.Status == StatusConfirmed {
		return nil
	}
	return e.transition(StatusConfirmed)
}

// Cancel ends a confirmed enrollment. It reports whether a seat must be
// handed back to the course.
func (e *Enrollment) Cancel() (bool, error) {
	if err := e.transition(StatusCancelled); err != nil {
		return false, err
	}
	return e.releaseSeat(), nil
}

// MarkRefunded records a refund. It reports whether a seat must be handed
// back to the course.
func (e *Enrollment) MarkRefunded(refundID string) (bool, error) {
	if err := e.transition(StatusRefunded); err != nil {
		return false, err
	}
	e.Payment.PaymentState = PaymentStateRefunded
	e.Payment.RefundID = optional(refundID)
	e.ReleaseAttempt()
	return e.releaseSeat(), nil
}

func (e *Enrollment) releaseSeat() bool {
	held := e.SeatReserved
	e.SeatReserved = false
	return held
}

// AttachSeat records that the course inventory was decremented for this
// enrollment and clears any pending reconciliation.
func (e *Enrollment) AttachSeat() {
	e.SeatReserved = true
	e.ClearReconciliation()
}

// DetachSeat records that a seat held by a terminal enrollment was handed
// back to the course.
func (e *Enrollment) DetachSeat() {
	e.SeatReserved = false
	e.ClearReconciliation()
}

func (e *Enrollment) ClearReconciliation() {
	e.NeedsReconciliation = false
	e.ReconciliationReason = nil
	e.UpdatedAt = time.Now().UTC()
}

// FlagForReconciliation marks a paid enrollment whose seat could not be taken.
func (e *Enrollment) FlagForReconciliation(reason string) {
	e.NeedsReconciliation = true
	e.ReconciliationReason = &reason
	e.UpdatedAt = time.Now().UTC()
}

func (e *Enrollment) IsTerminal() bool {
	switch e.Status {
	case StatusRefunded, StatusCancelled:
		return true
	default:
		return false
	}
}

// PullTransitions returns the transitions recorded since the last call and
// forgets them.
func (e *Enrollment) PullTransitions() []Transition {
	out := e.transitions
	e.transitions = nil
	return out
}

// TransactionIDValue returns the transaction id or "".
func (e *Enrollment) TransactionIDValue() string {
	if e.Payment.TransactionID == nil {
		return ""
	}
	return *e.Payment.TransactionID
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
