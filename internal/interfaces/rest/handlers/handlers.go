package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
	"github.com/go-playground/validator"
)

type PaymentService interface {
	ProcessPayment(ctx context.Context, cmd services.ProcessPaymentCommand, idempotencyKey string) (*services.PaymentResult, error)
	Tokenize(ctx context.Context, cmd services.TokenizeCommand) (*domain.PaymentToken, error)
}

type RefundService interface {
	Refund(ctx context.Context, cmd services.RefundCommand, idempotencyKey string) (*services.RefundResult, error)
}

type EnrollmentService interface {
	Create(ctx context.Context, cmd services.CreateEnrollmentCommand) (*domain.Enrollment, error)
	Get(ctx context.Context, id string) (*domain.Enrollment, error)
	Confirm(ctx context.Context, id string) (*domain.Enrollment, error)
	Cancel(ctx context.Context, id string) (*domain.Enrollment, error)
	ListReconciliation(ctx context.Context, limit int) ([]*domain.Enrollment, error)
}

type Handlers struct {
	paymentService    PaymentService
	refundService     RefundService
	enrollmentService EnrollmentService
	currency          string
	validate          *validator.Validate
	logger            *slog.Logger
}

func NewHandlers(
	paymentService PaymentService,
	refundService RefundService,
	enrollmentService EnrollmentService,
	currency string,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		paymentService:    paymentService,
		refundService:     refundService,
		enrollmentService: enrollmentService,
		currency:          currency,
		validate:          validator.New(),
		logger:            logger,
	}
}

// RegisterRoutes mounts every endpoint on mux. Admin routes are wrapped by
// admin, which is expected to enforce authentication.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /payment/process", h.ProcessPayment)
	mux.HandleFunc("POST /payment/refund", h.RefundPayment)
	mux.HandleFunc("POST /payment/tokenize", h.TokenizeCard)

	mux.HandleFunc("POST /enrollments", h.CreateEnrollment)
	mux.HandleFunc("GET /enrollments/{id}", h.GetEnrollment)

	mux.Handle("POST /admin/enrollments/{id}/confirm", admin(http.HandlerFunc(h.ConfirmEnrollment)))
	mux.Handle("POST /admin/enrollments/{id}/cancel", admin(http.HandlerFunc(h.CancelEnrollment)))
	mux.Handle("GET /admin/reconciliation", admin(http.HandlerFunc(h.ListReconciliation)))
}

func (h *Handlers) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return application.NewValidationError(fmt.Errorf("malformed JSON body: %w", err))
	}
	if err := h.validate.Struct(dst); err != nil {
		return application.NewValidationError(err)
	}
	return nil
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	rest.WriteError(w, err, h.logger)
}
