package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
)

const maxResponseBytes = 64 << 10

var _ application.GatewayClient = (*HTTPGatewayClient)(nil)

type HTTPGatewayClient struct {
	endpoint    string
	securityKey string
	username    string
	password    string
	httpClient  *http.Client
}

func NewGatewayClient(cfg config.GatewayConfig) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		endpoint:    cfg.BaseURL,
		securityKey: cfg.APIKey,
		username:    cfg.Username,
		password:    cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// Tokenize stores the card in the processor's customer vault.
func (c *HTTPGatewayClient) Tokenize(ctx context.Context, req application.TokenizeRequest) (*domain.PaymentToken, error) {
	if req.CustomerID == "" {
		return nil, invalidRequest(domain.NewMissingRequiredFieldError("customer ID"))
	}
	if err := req.Billing.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	form := url.Values{}
	form.Set("type", "tokenize")
	form.Set("customer_vault", "add_customer")
	form.Set("customer_vault_id", req.CustomerID)
	if err := encodeCard(form, req.Card); err != nil {
		return nil, invalidRequest(err)
	}
	encodeBilling(form, req.Billing)

	resp, err := c.send(ctx, operationTokenize, form)
	if err != nil {
		return nil, err
	}

	return &domain.PaymentToken{
		TokenID:    resp.tokenID(),
		CustomerID: req.CustomerID,
	}, nil
}

func (c *HTTPGatewayClient) Charge(ctx context.Context, req application.ChargeRequest) (*application.ChargeResult, error) {
	if req.Amount.Amount <= 0 {
		return nil, invalidRequest(domain.NewInvalidAmountError(req.Amount.String()))
	}
	if req.OrderID == "" {
		return nil, invalidRequest(domain.NewMissingRequiredFieldError("order ID"))
	}

	form := url.Values{}
	form.Set("type", "sale")
	form.Set("amount", req.Amount.String())
	form.Set("currency", req.Amount.Currency)
	form.Set("orderid", req.OrderID)
	if req.Description != "" {
		form.Set("order_description", req.Description)
	}

	switch method := req.Method.(type) {
	case domain.TokenMethod:
		if method.TokenID == "" {
			return nil, invalidRequest(domain.NewMissingRequiredFieldError("payment token"))
		}
		form.Set("payment_token", method.TokenID)
	case domain.CardMethod:
		if err := encodeCard(form, method.Card); err != nil {
			return nil, invalidRequest(err)
		}
	default:
		return nil, invalidRequest(errors.New("payment method is required"))
	}
	if req.Billing != nil {
		encodeBilling(form, *req.Billing)
	}

	resp, err := c.send(ctx, operationSale, form)
	if err != nil {
		return nil, err
	}

	return &application.ChargeResult{
		TransactionID: resp.TransactionID,
		AuthCode:      resp.AuthCode,
		AVSResponse:   resp.AVSResponse,
		CVVResponse:   resp.CVVResponse,
		ResponseCode:  resp.ResponseCode,
		ResponseText:  resp.ResponseText,
	}, nil
}

func (c *HTTPGatewayClient) Refund(ctx context.Context, req application.RefundRequest) (*application.RefundResult, error) {
	if req.TransactionID == "" {
		return nil, invalidRequest(domain.NewMissingRequiredFieldError("transaction ID"))
	}
	if req.Amount.Amount <= 0 {
		return nil, invalidRequest(domain.NewInvalidAmountError(req.Amount.String()))
	}

	form := url.Values{}
	form.Set("type", "refund")
	form.Set("transactionid", req.TransactionID)
	form.Set("amount", req.Amount.String())
	if req.OrderID != "" {
		form.Set("orderid", req.OrderID)
	}

	resp, err := c.send(ctx, operationRefund, form)
	if err != nil {
		return nil, err
	}

	return &application.RefundResult{
		RefundID:     resp.TransactionID,
		ResponseCode: resp.ResponseCode,
		ResponseText: resp.ResponseText,
	}, nil
}

func (c *HTTPGatewayClient) send(ctx context.Context, op operation, form url.Values) (*response, error) {
	form.Set("security_key", c.securityKey)
	form.Set("username", c.username)
	form.Set("password", c.password)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &application.GatewayError{
			Kind: application.GatewayKindUnavailable,
			Err:  fmt.Errorf("error making request: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &application.GatewayError{
			Kind:       application.GatewayKindUnavailable,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &application.GatewayError{
			Kind: application.GatewayKindUnavailable,
			Err:  fmt.Errorf("error reading response: %w", err),
		}
	}

	return parseResponse(op, body)
}

func encodeCard(form url.Values, card domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	exp, err := card.ExpiryMMYY()
	if err != nil {
		return err
	}
	form.Set("ccnumber", strings.TrimSpace(card.Number))
	form.Set("ccexp", exp)
	form.Set("cvv", strings.TrimSpace(card.CVV))
	return nil
}

func encodeBilling(form url.Values, b domain.BillingAddress) {
	form.Set("first_name", b.FirstName)
	form.Set("last_name", b.LastName)
	form.Set("address1", b.Address1)
	form.Set("city", b.City)
	form.Set("state", b.State)
	form.Set("zip", b.Zip)
	form.Set("country", b.Country)
}

func invalidRequest(err error) *application.GatewayError {
	return &application.GatewayError{
		Kind: application.GatewayKindInvalidRequest,
		Err:  err,
	}
}
