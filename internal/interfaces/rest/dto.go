package rest

import (
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

type CardRequest struct {
	Number      string `json:"number" validate:"required"`
	ExpiryMonth int    `json:"expiryMonth" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiryYear" validate:"required"`
	CVV         string `json:"cvv" validate:"required"`
}

func (c *CardRequest) ToDomain() domain.Card {
	if c == nil {
		return domain.Card{}
	}
	return domain.Card{
		Number:      c.Number,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
		CVV:         c.CVV,
	}
}

type BillingRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Address1  string `json:"address1" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country" validate:"required"`
}

func (b *BillingRequest) ToDomain() domain.BillingAddress {
	if b == nil {
		return domain.BillingAddress{}
	}
	return domain.BillingAddress{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Address1:  b.Address1,
		City:      b.City,
		State:     b.State,
		Zip:       b.Zip,
		Country:   b.Country,
	}
}

type ProcessPaymentRequest struct {
	EnrollmentID string          `json:"enrollmentId" validate:"required"`
	CourseID     string          `json:"courseId"`
	CustomerID   string          `json:"customerId"`
	TokenID      string          `json:"tokenId"`
	Card         *CardRequest    `json:"card"`
	Billing      *BillingRequest `json:"billing"`
	Description  string          `json:"description"`
}

type ProcessPaymentResponse struct {
	Success             bool   `json:"success"`
	EnrollmentID        string `json:"enrollmentId"`
	TransactionID       string `json:"transactionId,omitempty"`
	AuthCode            string `json:"authCode,omitempty"`
	Status              string `json:"status"`
	NeedsReconciliation bool   `json:"needsReconciliation,omitempty"`
}

type RefundRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
}

type RefundResponse struct {
	Success  bool   `json:"success"`
	RefundID string `json:"refundId,omitempty"`
	Status   string `json:"status,omitempty"`
}

type TokenizeRequest struct {
	CustomerID string          `json:"customerId" validate:"required"`
	Card       *CardRequest    `json:"card" validate:"required"`
	Billing    *BillingRequest `json:"billing" validate:"required"`
}

type TokenizeResponse struct {
	Success    bool   `json:"success"`
	TokenID    string `json:"tokenId,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
}

type CreateEnrollmentRequest struct {
	CourseID     string `json:"courseId" validate:"required"`
	StudentID    string `json:"studentId" validate:"required"`
	ParentID     string `json:"parentId" validate:"required"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
}

type Enrollment struct {
	ID                   string    `json:"id"`
	CourseID             string    `json:"courseId"`
	StudentID            string    `json:"studentId"`
	ParentID             string    `json:"parentId"`
	Status               string    `json:"status"`
	Amount               string    `json:"amount"`
	Currency             string    `json:"currency"`
	PaymentStatus        string    `json:"paymentStatus"`
	TransactionID        string    `json:"transactionId,omitempty"`
	AuthCode             string    `json:"authCode,omitempty"`
	DeclineCode          string    `json:"declineCode,omitempty"`
	DeclineReason        string    `json:"declineReason,omitempty"`
	RefundID             string    `json:"refundId,omitempty"`
	SeatReserved         bool      `json:"seatReserved"`
	NeedsReconciliation  bool      `json:"needsReconciliation"`
	ReconciliationReason string    `json:"reconciliationReason,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type EnrollmentResponse struct {
	Success bool       `json:"success"`
	Data    Enrollment `json:"data"`
}

type EnrollmentListResponse struct {
	Success bool         `json:"success"`
	Data    []Enrollment `json:"data"`
}

func ToAPIEnrollment(e *domain.Enrollment) Enrollment {
	return Enrollment{
		ID:                   e.ID,
		CourseID:             e.CourseID,
		StudentID:            e.StudentID,
		ParentID:             e.ParentID,
		Status:               string(e.Status),
		Amount:               e.Payment.Amount.String(),
		Currency:             e.Payment.Amount.Currency,
		PaymentStatus:        string(e.Payment.PaymentState),
		TransactionID:        value(e.Payment.TransactionID),
		AuthCode:             value(e.Payment.AuthCode),
		DeclineCode:          value(e.Payment.DeclineCode),
		DeclineReason:        value(e.Payment.DeclineReason),
		RefundID:             value(e.Payment.RefundID),
		SeatReserved:         e.SeatReserved,
		NeedsReconciliation:  e.NeedsReconciliation,
		ReconciliationReason: value(e.ReconciliationReason),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func ToAPIEnrollments(enrollments []*domain.Enrollment) []Enrollment {
	out := make([]Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, ToAPIEnrollment(e))
	}
	return out
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
