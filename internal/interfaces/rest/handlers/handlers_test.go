package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPaymentService struct {
	processFn  func(ctx context.Context, cmd services.ProcessPaymentCommand, key string) (*services.PaymentResult, error)
	tokenizeFn func(ctx context.Context, cmd services.TokenizeCommand) (*domain.PaymentToken, error)
}

func (m *mockPaymentService) ProcessPayment(ctx context.Context, cmd services.ProcessPaymentCommand, key string) (*services.PaymentResult, error) {
	return m.processFn(ctx, cmd, key)
}

func (m *mockPaymentService) Tokenize(ctx context.Context, cmd services.TokenizeCommand) (*domain.PaymentToken, error) {
	return m.tokenizeFn(ctx, cmd)
}

type mockRefundService struct {
	refundFn func(ctx context.Context, cmd services.RefundCommand, key string) (*services.RefundResult, error)
}

func (m *mockRefundService) Refund(ctx context.Context, cmd services.RefundCommand, key string) (*services.RefundResult, error) {
	return m.refundFn(ctx, cmd, key)
}

type mockEnrollmentService struct {
	createFn  func(ctx context.Context, cmd services.CreateEnrollmentCommand) (*domain.Enrollment, error)
	getFn     func(ctx context.Context, id string) (*domain.Enrollment, error)
	confirmFn func(ctx context.Context, id string) (*domain.Enrollment, error)
	cancelFn  func(ctx context.Context, id string) (*domain.Enrollment, error)
	listFn    func(ctx context.Context, limit int) ([]*domain.Enrollment, error)
}

func (m *mockEnrollmentService) Create(ctx context.Context, cmd services.CreateEnrollmentCommand) (*domain.Enrollment, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockEnrollmentService) Get(ctx context.Context, id string) (*domain.Enrollment, error) {
	return m.getFn(ctx, id)
}

func (m *mockEnrollmentService) Confirm(ctx context.Context, id string) (*domain.Enrollment, error) {
	return m.confirmFn(ctx, id)
}

func (m *mockEnrollmentService) Cancel(ctx context.Context, id string) (*domain.Enrollment, error) {
	return m.cancelFn(ctx, id)
}

func (m *mockEnrollmentService) ListReconciliation(ctx context.Context, limit int) ([]*domain.Enrollment, error) {
	return m.listFn(ctx, limit)
}

func passthrough(next http.Handler) http.Handler { return next }

func newMux(p PaymentService, r RefundService, e EnrollmentService) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandlers(p, r, e, "USD", logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, passthrough)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) rest.ErrorResponse {
	t.Helper()
	var resp rest.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func sampleEnrollment(status domain.EnrollmentStatus) *domain.Enrollment {
	txID := "T100"
	return &domain.Enrollment{
		ID:        "enr-1",
		CourseID:  "course-1",
		StudentID: "student-1",
		ParentID:  "parent-1",
		Status:    status,
		Payment: domain.PaymentDetails{
			Amount:        domain.Money{Amount: 29900, Currency: "USD"},
			PaymentState:  domain.PaymentStateApproved,
			TransactionID: &txID,
		},
		SeatReserved: true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func validPaymentBody() rest.ProcessPaymentRequest {
	return rest.ProcessPaymentRequest{
		EnrollmentID: "enr-1",
		CourseID:     "course-1",
		Card: &rest.CardRequest{
			Number:      "4111111111111111",
			ExpiryMonth: 12,
			ExpiryYear:  2030,
			CVV:         "123",
		},
		Billing: &rest.BillingRequest{
			FirstName: "Ayrton",
			LastName:  "Senna",
			Address1:  "1 Pit Lane",
			City:      "Sao Paulo",
			State:     "SP",
			Zip:       "01000",
			Country:   "BR",
		},
	}
}

func TestProcessPayment_Success(t *testing.T) {
	var gotKey string
	var gotCmd services.ProcessPaymentCommand
	payments := &mockPaymentService{
		processFn: func(ctx context.Context, cmd services.ProcessPaymentCommand, key string) (*services.PaymentResult, error) {
			gotKey, gotCmd = key, cmd
			return &services.PaymentResult{
				EnrollmentID:  cmd.EnrollmentID,
				Status:        domain.StatusConfirmed,
				TransactionID: "T100",
				AuthCode:      "A1",
			}, nil
		},
	}
	mux := newMux(payments, nil, nil)

	rr := do(t, mux, http.MethodPost, "/payment/process", validPaymentBody(), map[string]string{"Idempotency-Key": "idem-1"})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp rest.ProcessPaymentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "T100", resp.TransactionID)
	assert.Equal(t, "A1", resp.AuthCode)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "idem-1", gotKey)
	assert.Equal(t, "4111111111111111", gotCmd.Card.Number)
	assert.Equal(t, "Senna", gotCmd.Billing.LastName)
}

func TestProcessPayment_Decline(t *testing.T) {
	payments := &mockPaymentService{
		processFn: func(ctx context.Context, cmd services.ProcessPaymentCommand, key string) (*services.PaymentResult, error) {
			return nil, application.NewGatewayDeclineError(&application.GatewayError{
				Kind:         application.GatewayKindDecline,
				Reason:       application.DeclineInvalidCardNumber,
				Description:  "Invalid card number",
				ResponseCode: "200",
				ResponseText: "Invalid card number",
			})
		},
	}
	mux := newMux(payments, nil, nil)

	rr := do(t, mux, http.MethodPost, "/payment/process", validPaymentBody(), map[string]string{"Idempotency-Key": "idem-2"})

	require.Equal(t, http.StatusPaymentRequired, rr.Code)
	resp := decodeError(t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, application.ErrCodeGatewayDecline, resp.Code)
	assert.Equal(t, "Invalid card number", resp.Error)
	assert.Equal(t, "200", resp.Details["response_code"])
}

func TestProcessPayment_PersistenceErrorHidesCause(t *testing.T) {
	payments := &mockPaymentService{
		processFn: func(ctx context.Context, cmd services.ProcessPaymentCommand, key string) (*services.PaymentResult, error) {
			return nil, application.NewPersistenceError(errors.New("connection refused"))
		},
	}
	mux := newMux(payments, nil, nil)

	rr := do(t, mux, http.MethodPost, "/payment/process", validPaymentBody(), map[string]string{"Idempotency-Key": "idem-3"})

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, application.ErrCodePersistence, resp.Code)
	assert.Equal(t, application.PersistenceMessage, resp.Error)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestProcessPayment_MissingEnrollment_ValidationError(t *testing.T) {
	mux := newMux(&mockPaymentService{}, nil, nil)
	body := validPaymentBody()
	body.EnrollmentID = ""

	rr := do(t, mux, http.MethodPost, "/payment/process", body, map[string]string{"Idempotency-Key": "idem-4"})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, application.ErrCodeValidation, decodeError(t, rr).Code)
}

func TestProcessPayment_MalformedJSON(t *testing.T) {
	mux := newMux(&mockPaymentService{}, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/payment/process", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()

	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, application.ErrCodeValidation, decodeError(t, rr).Code)
}

func TestRefundPayment_ParsesDecimalAmount(t *testing.T) {
	var gotCmd services.RefundCommand
	refunds := &mockRefundService{
		refundFn: func(ctx context.Context, cmd services.RefundCommand, key string) (*services.RefundResult, error) {
			gotCmd = cmd
			return &services.RefundResult{RefundID: "R100", Status: domain.StatusRefunded}, nil
		},
	}
	mux := newMux(nil, refunds, nil)

	rr := do(t, mux, http.MethodPost, "/payment/refund",
		rest.RefundRequest{TransactionID: "T100", Amount: "100.50"},
		map[string]string{"Idempotency-Key": "idem-r1"})

	require.Equal(t, http.StatusOK, rr.Code)
	var resp rest.RefundResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "R100", resp.RefundID)
	assert.Equal(t, int64(10050), gotCmd.Amount.Amount)
	assert.Equal(t, "USD", gotCmd.Amount.Currency)
}

func TestRefundPayment_RejectsSubCentAmount(t *testing.T) {
	mux := newMux(nil, &mockRefundService{}, nil)

	rr := do(t, mux, http.MethodPost, "/payment/refund",
		rest.RefundRequest{TransactionID: "T100", Amount: "1.005"},
		map[string]string{"Idempotency-Key": "idem-r2"})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, application.ErrCodeValidation, decodeError(t, rr).Code)
}

func TestRefundPayment_RejectsGarbageAmount(t *testing.T) {
	mux := newMux(nil, &mockRefundService{}, nil)

	rr := do(t, mux, http.MethodPost, "/payment/refund",
		rest.RefundRequest{TransactionID: "T100", Amount: "ten"},
		map[string]string{"Idempotency-Key": "idem-r3"})

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTokenizeCard_Success(t *testing.T) {
	payments := &mockPaymentService{
		tokenizeFn: func(ctx context.Context, cmd services.TokenizeCommand) (*domain.PaymentToken, error) {
			return &domain.PaymentToken{TokenID: "tok-1", CustomerID: cmd.CustomerID}, nil
		},
	}
	mux := newMux(payments, nil, nil)
	body := validPaymentBody()

	rr := do(t, mux, http.MethodPost, "/payment/tokenize", rest.TokenizeRequest{
		CustomerID: "parent-1",
		Card:       body.Card,
		Billing:    body.Billing,
	}, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp rest.TokenizeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tok-1", resp.TokenID)
	assert.Equal(t, "parent-1", resp.CustomerID)
}

func TestTokenizeCard_MissingCard(t *testing.T) {
	mux := newMux(&mockPaymentService{}, nil, nil)

	rr := do(t, mux, http.MethodPost, "/payment/tokenize", rest.TokenizeRequest{CustomerID: "parent-1"}, nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, application.ErrCodeValidation, resp.Code)
}

func TestCreateEnrollment_Created(t *testing.T) {
	enrollments := &mockEnrollmentService{
		createFn: func(ctx context.Context, cmd services.CreateEnrollmentCommand) (*domain.Enrollment, error) {
			e := sampleEnrollment(domain.StatusPending)
			e.CourseID = cmd.CourseID
			return e, nil
		},
	}
	mux := newMux(nil, nil, enrollments)

	rr := do(t, mux, http.MethodPost, "/enrollments", rest.CreateEnrollmentRequest{
		CourseID:     "course-9",
		StudentID:    "student-1",
		ParentID:     "parent-1",
		ContactEmail: "parent@example.com",
	}, nil)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp rest.EnrollmentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "course-9", resp.Data.CourseID)
	assert.Equal(t, "pending", resp.Data.Status)
	assert.Equal(t, "299.00", resp.Data.Amount)
}

func TestCreateEnrollment_BadEmail(t *testing.T) {
	mux := newMux(nil, nil, &mockEnrollmentService{})

	rr := do(t, mux, http.MethodPost, "/enrollments", rest.CreateEnrollmentRequest{
		CourseID:     "course-9",
		StudentID:    "student-1",
		ParentID:     "parent-1",
		ContactEmail: "not-an-email",
	}, nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetEnrollment_NotFound(t *testing.T) {
	enrollments := &mockEnrollmentService{
		getFn: func(ctx context.Context, id string) (*domain.Enrollment, error) {
			return nil, application.NewNotFoundError(domain.NewEnrollmentNotFoundError(id))
		},
	}
	mux := newMux(nil, nil, enrollments)

	rr := do(t, mux, http.MethodGet, "/enrollments/missing", nil, nil)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, application.ErrCodeNotFound, decodeError(t, rr).Code)
}

func TestConfirmEnrollment_UsesPathID(t *testing.T) {
	var gotID string
	enrollments := &mockEnrollmentService{
		confirmFn: func(ctx context.Context, id string) (*domain.Enrollment, error) {
			gotID = id
			return sampleEnrollment(domain.StatusConfirmed), nil
		},
	}
	mux := newMux(nil, nil, enrollments)

	rr := do(t, mux, http.MethodPost, "/admin/enrollments/enr-1/confirm", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "enr-1", gotID)
}

func TestCancelEnrollment_InvalidTransition(t *testing.T) {
	enrollments := &mockEnrollmentService{
		cancelFn: func(ctx context.Context, id string) (*domain.Enrollment, error) {
			return nil, application.NewInvalidTransitionError(domain.NewInvalidTransitionError(domain.StatusPaid, domain.StatusCancelled))
		},
	}
	mux := newMux(nil, nil, enrollments)

	rr := do(t, mux, http.MethodPost, "/admin/enrollments/enr-1/cancel", nil, nil)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, application.ErrCodeInvalidTransition, decodeError(t, rr).Code)
}

func TestListReconciliation_BindsLimit(t *testing.T) {
	var gotLimit int
	enrollments := &mockEnrollmentService{
		listFn: func(ctx context.Context, limit int) ([]*domain.Enrollment, error) {
			gotLimit = limit
			e := sampleEnrollment(domain.StatusPaid)
			e.NeedsReconciliation = true
			e.SeatReserved = false
			return []*domain.Enrollment{e}, nil
		},
	}
	mux := newMux(nil, nil, enrollments)

	rr := do(t, mux, http.MethodGet, "/admin/reconciliation?limit=25", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 25, gotLimit)
	var resp rest.EnrollmentListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.True(t, resp.Data[0].NeedsReconciliation)
}

func TestListReconciliation_DefaultsAndBadLimit(t *testing.T) {
	var gotLimit = -1
	enrollments := &mockEnrollmentService{
		listFn: func(ctx context.Context, limit int) ([]*domain.Enrollment, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	mux := newMux(nil, nil, enrollments)

	rr := do(t, mux, http.MethodGet, "/admin/reconciliation", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, gotLimit)

	rr = do(t, mux, http.MethodGet, "/admin/reconciliation?limit=lots", nil, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
