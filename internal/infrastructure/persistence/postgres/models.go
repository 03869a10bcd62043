package postgres

import (
	"time"
)

type EnrollmentModel struct {
	ID                   string
	CourseID             string
	StudentID            string
	ParentID             string
	ContactEmail         string
	Status               string
	AmountCents          int64
	Currency             string
	PaymentStatus        string
	TransactionID        *string
	AuthCode             *string
	DeclineCode          *string
	DeclineReason        *string
	RefundID             *string
	SeatReserved         bool
	NeedsReconciliation  bool
	ReconciliationReason *string
	InFlightAttempt      *string
	InFlightSince        *time.Time
	ReminderSentAt       *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type CourseModel struct {
	ID             string
	Title          string
	PriceCents     int64
	Currency       string
	AvailableSpots int
	MaxStudents    int
	StartsAt       time.Time
	CreatedAt      time.Time
}

// AttemptModel enforces at-most-once gateway calls via the unique key.
type AttemptModel struct {
	Key           string
	EnrollmentID  string
	Kind          string
	RequestHash   string
	Outcome       string
	TransactionID *string
	AuthCode      *string
	ErrorCode     *string
	ErrorMessage  *string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}
