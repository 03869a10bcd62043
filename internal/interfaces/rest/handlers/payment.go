package handlers

import (
	"net/http"

	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
)

const idempotencyHeader = "Idempotency-Key"

func (h *Handlers) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req rest.ProcessPaymentRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	cmd := services.ProcessPaymentCommand{
		EnrollmentID: req.EnrollmentID,
		CourseID:     req.CourseID,
		CustomerID:   req.CustomerID,
		TokenID:      req.TokenID,
		Card:         req.Card.ToDomain(),
		Billing:      req.Billing.ToDomain(),
		Description:  req.Description,
	}

	result, err := h.paymentService.ProcessPayment(r.Context(), cmd, r.Header.Get(idempotencyHeader))
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ProcessPaymentResponse{
		Success:             true,
		EnrollmentID:        result.EnrollmentID,
		TransactionID:       result.TransactionID,
		AuthCode:            result.AuthCode,
		Status:              string(result.Status),
		NeedsReconciliation: result.NeedsReconciliation,
	})
}

func (h *Handlers) TokenizeCard(w http.ResponseWriter, r *http.Request) {
	var req rest.TokenizeRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	token, err := h.paymentService.Tokenize(r.Context(), services.TokenizeCommand{
		CustomerID: req.CustomerID,
		Card:       req.Card.ToDomain(),
		Billing:    req.Billing.ToDomain(),
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.TokenizeResponse{
		Success:    true,
		TokenID:    token.TokenID,
		CustomerID: token.CustomerID,
	})
}
