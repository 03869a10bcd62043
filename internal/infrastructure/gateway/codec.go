package gateway

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
)

type operation string

const (
	operationSale     operation = "sale"
	operationRefund   operation = "refund"
	operationTokenize operation = "tokenize"
)

// Values of the response field.
const (
	responseApproved = "1"
	responseDeclined = "2"
	responseError    = "3"
)

type response struct {
	Response        string
	ResponseCode    string
	ResponseText    string
	TransactionID   string
	AuthCode        string
	AVSResponse     string
	CVVResponse     string
	Token           string
	CustomerVaultID string
}

func (r *response) tokenID() string {
	if r.Token != "" {
		return r.Token
	}
	return r.CustomerVaultID
}

// parseResponse decodes a form-encoded gateway reply. Anything that is not a
// well formed approval comes back as a *application.GatewayError.
func parseResponse(op operation, body []byte) (*response, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, protocolError(fmt.Errorf("malformed response body: %w", err))
	}

	resp := &response{
		Response:        values.Get("response"),
		ResponseCode:    values.Get("response_code"),
		ResponseText:    values.Get("responsetext"),
		TransactionID:   values.Get("transactionid"),
		AuthCode:        values.Get("authcode"),
		AVSResponse:     values.Get("avsresponse"),
		CVVResponse:     values.Get("cvvresponse"),
		Token:           values.Get("token"),
		CustomerVaultID: values.Get("customer_vault_id"),
	}

	if resp.ResponseCode == "" {
		return nil, protocolError(fmt.Errorf("response_code missing (response=%q)", resp.Response))
	}

	switch resp.Response {
	case responseApproved:
		if err := resp.checkApproved(op); err != nil {
			return nil, protocolError(err)
		}
		return resp, nil
	case responseDeclined, responseError:
		return nil, resp.decline()
	default:
		return nil, protocolError(fmt.Errorf("unexpected response value %q", resp.Response))
	}
}

func (r *response) checkApproved(op operation) error {
	switch op {
	case operationTokenize:
		if r.tokenID() == "" {
			return fmt.Errorf("approved %s response has no token", op)
		}
	default:
		if r.TransactionID == "" {
			return fmt.Errorf("approved %s response has no transactionid", op)
		}
	}
	return nil
}

func (r *response) decline() *application.GatewayError {
	reason, description := describeCode(r.ResponseCode)
	if description == "" {
		description = r.ResponseText
	}
	return &application.GatewayError{
		Kind:          application.GatewayKindDecline,
		Reason:        reason,
		Description:   description,
		ResponseCode:  r.ResponseCode,
		ResponseText:  r.ResponseText,
		TransactionID: r.TransactionID,
	}
}

func protocolError(err error) *application.GatewayError {
	return &application.GatewayError{
		Kind: application.GatewayKindProtocol,
		Err:  err,
	}
}

var knownCodes = map[string]struct {
	reason      string
	description string
}{
	"200": {application.DeclineInvalidCardNumber, "Invalid card number"},
	"201": {application.DeclineInvalidExpiry, "Invalid expiration date"},
	"202": {application.DeclineInsufficientFunds, "Insufficient funds"},
	"223": {application.DeclineExpiredCard, "Expired card"},
	"225": {application.DeclineCVVMismatch, "CVV mismatch"},
	"300": {application.DeclineRejected, "Rejected by gateway"},
}

// describeCode maps a processor response code to a reason. Unknown codes
// become a generic decline with no description of their own.
func describeCode(code string) (string, string) {
	if known, ok := knownCodes[code]; ok {
		return known.reason, known.description
	}
	return application.DeclineGeneric, ""
}
