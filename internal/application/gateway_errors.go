package application

import (
	"errors"
	"fmt"
)

type GatewayErrorKind string

const (
	GatewayKindDecline        GatewayErrorKind = "decline"
	GatewayKindUnavailable    GatewayErrorKind = "unavailable"
	GatewayKindProtocol       GatewayErrorKind = "protocol"
	GatewayKindInvalidRequest GatewayErrorKind = "invalid_request"
)

// Decline reasons for the response codes the processor documents.
const (
	DeclineInvalidCardNumber = "invalid_card_number"
	DeclineInvalidExpiry     = "invalid_expiration_date"
	DeclineInsufficientFunds = "insufficient_funds"
	DeclineExpiredCard       = "expired_card"
	DeclineCVVMismatch       = "cvv_mismatch"
	DeclineRejected          = "rejected_by_gateway"
	DeclineGeneric           = "declined"
)

// GatewayError describes every non-approved outcome of a gateway call.
// ResponseCode and ResponseText are copied verbatim from the processor.
type GatewayError struct {
	Kind          GatewayErrorKind
	Reason        string
	Description   string
	ResponseCode  string
	ResponseText  string
	TransactionID string
	StatusCode    int
	Err           error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case GatewayKindDecline:
		return fmt.Sprintf("gateway decline [%s]: %s", e.ResponseCode, e.Message())
	case GatewayKindUnavailable:
		if e.StatusCode != 0 {
			return fmt.Sprintf("gateway unavailable (status: %d)", e.StatusCode)
		}
		return fmt.Sprintf("gateway unavailable: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("gateway %s error: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("gateway %s error [%s]: %s", e.Kind, e.ResponseCode, e.ResponseText)
	}
}

// Message combines the known description with the processor text, e.g.
// "Invalid card number: DECLINE".
func (e *GatewayError) Message() string {
	switch {
	case e.Description != "" && e.ResponseText != "" && e.ResponseText != e.Description:
		return e.Description + ": " + e.ResponseText
	case e.Description != "":
		return e.Description
	case e.ResponseText != "":
		return e.ResponseText
	default:
		return "card declined"
	}
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) IsRetryable() bool {
	return e.Kind == GatewayKindUnavailable
}

// IsCardRejection reports whether the stored card itself is unusable.
func (e *GatewayError) IsCardRejection() bool {
	if e.Kind != GatewayKindDecline {
		return false
	}
	switch e.Reason {
	case DeclineInvalidCardNumber, DeclineInvalidExpiry, DeclineExpiredCard:
		return true
	default:
		return false
	}
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
