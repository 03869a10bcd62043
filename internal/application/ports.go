package application

import (
	"context"
	"errors"

	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

// GatewayClient is the port for the external card processor.
type GatewayClient interface {
	Tokenize(ctx context.Context, req TokenizeRequest) (*domain.PaymentToken, error)
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

type TokenizeRequest struct {
	Card       domain.Card
	Billing    domain.BillingAddress
	CustomerID string
}

// ChargeRequest carries exactly one payment method. OrderID must be unique
// per logical attempt.
type ChargeRequest struct {
	Amount      domain.Money
	Method      domain.PaymentMethod
	Billing     *domain.BillingAddress
	OrderID     string
	Description string
}

type ChargeResult struct {
	TransactionID string
	AuthCode      string
	AVSResponse   string
	CVVResponse   string
	ResponseCode  string
	ResponseText  string
}

type RefundRequest struct {
	TransactionID string
	Amount        domain.Money
	OrderID       string
}

type RefundResult struct {
	RefundID     string
	ResponseCode string
	ResponseText string
}

var ErrTokenNotFound = errors.New("payment token not found")

// TokenVault stores gateway tokens per customer. Raw card data never goes in.
type TokenVault interface {
	Get(ctx context.Context, customerID string) (*domain.PaymentToken, error)
	Put(ctx context.Context, token domain.PaymentToken) error
	Forget(ctx context.Context, customerID string) error
}

// Template keys understood by every Mailer.
const (
	TemplatePaymentConfirmation    = "payment_confirmation"
	TemplatePaymentFailed          = "payment_failed"
	TemplateEnrollmentConfirmation = "enrollment_confirmation"
	TemplateReminder               = "reminder"
)

// Mailer sends a provider-side template to a single recipient.
type Mailer interface {
	SendTemplateEmail(ctx context.Context, to, templateKey string, data map[string]any) error
}

// TransitionNotice is what the orchestrator hands to the notifier after a
// status change has been persisted.
type TransitionNotice struct {
	Transition    domain.Transition
	ContactEmail  string
	StudentID     string
	CourseID      string
	Amount        domain.Money
	TransactionID string
	DeclineCode   string
	DeclineReason string
}

// Notifier accepts notices without blocking the caller.
type Notifier interface {
	NotifyTransition(notice TransitionNotice)
	NotifyReminder(target domain.ReminderTarget)
}

// Recorder receives business counters.
type Recorder interface {
	PaymentOutcome(outcome string)
	RefundOutcome(outcome string)
	SeatReconciliation(outcome string)
	NotificationOutcome(template, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) PaymentOutcome(string)              {}
func (nopRecorder) RefundOutcome(string)               {}
func (nopRecorder) SeatReconciliation(string)          {}
func (nopRecorder) NotificationOutcome(string, string) {}

// NopRecorder discards everything.
var NopRecorder Recorder = nopRecorder{}
