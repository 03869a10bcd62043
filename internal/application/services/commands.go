package services

import "github.com/DanielPopoola/racing-academy-payments/internal/domain"

// ProcessPaymentCommand charges an enrollment. Exactly one of TokenID or
// Card is expected; with neither, a vaulted token for CustomerID is used.
type ProcessPaymentCommand struct {
	EnrollmentID string
	CourseID     string
	CustomerID   string
	TokenID      string
	Card         domain.Card
	Billing      domain.BillingAddress
	Description  string
}

func (c ProcessPaymentCommand) hasCard() bool {
	return c.Card.Number != ""
}

func (c ProcessPaymentCommand) hasBilling() bool {
	return c.Billing != (domain.BillingAddress{})
}

type RefundCommand struct {
	TransactionID string
	Amount        domain.Money
}

type TokenizeCommand struct {
	CustomerID string
	Card       domain.Card
	Billing    domain.BillingAddress
}

type CreateEnrollmentCommand struct {
	CourseID     string
	StudentID    string
	ParentID     string
	ContactEmail string
}

// PaymentResult is returned for both fresh and replayed charges.
type PaymentResult struct {
	EnrollmentID        string
	Status              domain.EnrollmentStatus
	TransactionID       string
	AuthCode            string
	NeedsReconciliation bool
	Replayed            bool
}

type RefundResult struct {
	EnrollmentID string
	RefundID     string
	Status       domain.EnrollmentStatus
	Replayed     bool
}
