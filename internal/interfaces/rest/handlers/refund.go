package handlers

import (
	"cmp"
	"net/http"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

func (h *Handlers) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req rest.RefundRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	parsed, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.fail(w, application.NewValidationError(domain.NewInvalidAmountError(req.Amount)))
		return
	}
	amount, err := domain.MoneyFromDecimal(parsed, cmp.Or(req.Currency, h.currency))
	if err != nil {
		h.fail(w, application.NewValidationError(err))
		return
	}

	result, err := h.refundService.Refund(r.Context(), services.RefundCommand{
		TransactionID: req.TransactionID,
		Amount:        amount,
	}, r.Header.Get(idempotencyHeader))
	if err != nil {
		h.fail(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.RefundResponse{
		Success:  true,
		RefundID: result.RefundID,
		Status:   string(result.Status),
	})
}
