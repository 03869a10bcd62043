package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (cents) of an ISO currency.
type Money struct {
	Amount   int64
	Currency string
}

func NewMoney(amount int64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, errors.New("amount cannot be negative")
	}
	if currency == "" {
		return Money{}, errors.New("currency is required")
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// MoneyFromDecimal converts a major-unit amount such as 299.00 into Money.
// Fractions below one cent are rejected rather than rounded.
func MoneyFromDecimal(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, NewInvalidAmountError(amount.String())
	}
	minor := amount.Shift(2)
	if !minor.Equal(minor.Truncate(0)) {
		return Money{}, NewInvalidAmountError(amount.String())
	}
	return NewMoney(minor.IntPart(), currency)
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -2)
}

// String formats the amount with exactly two decimals, e.g. "299.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

type Card struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

// ExpiryMMYY normalizes the expiry into the four digit MMYY form, accepting
// either two or four digit years.
func (c Card) ExpiryMMYY() (string, error) {
	if c.ExpiryMonth < 1 || c.ExpiryMonth > 12 {
		return "", NewInvalidCardError(fmt.Sprintf("invalid expiry month %d", c.ExpiryMonth))
	}
	year := c.ExpiryYear
	if year >= 100 {
		year %= 100
	}
	if year < 0 {
		return "", NewInvalidCardError(fmt.Sprintf("invalid expiry year %d", c.ExpiryYear))
	}
	return fmt.Sprintf("%02d%02d", c.ExpiryMonth, year), nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Number) == "" {
		return NewMissingRequiredFieldError("card number")
	}
	if strings.TrimSpace(c.CVV) == "" {
		return NewMissingRequiredFieldError("cvv")
	}
	if c.ExpiryYear == 0 {
		return NewMissingRequiredFieldError("expiry year")
	}
	_, err := c.ExpiryMMYY()
	return err
}

// Last4 is safe to log.
func (c Card) Last4() string {
	n := strings.TrimSpace(c.Number)
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

type BillingAddress struct {
	FirstName string
	LastName  string
	Address1  string
	City      string
	State     string
	Zip       string
	Country   string
}

func (b BillingAddress) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"first name", b.FirstName},
		{"last name", b.LastName},
		{"address", b.Address1},
		{"city", b.City},
		{"state", b.State},
		{"zip", b.Zip},
		{"country", b.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewMissingRequiredFieldError("billing " + f.name)
		}
	}
	return nil
}

// PaymentMethod is either a vaulted token or raw card data, never both.
type PaymentMethod interface {
	isPaymentMethod()
}

type TokenMethod struct {
	TokenID string
}

type CardMethod struct {
	Card Card
}

func (TokenMethod) isPaymentMethod() {}
func (CardMethod) isPaymentMethod()  {}

// PaymentToken is the gateway's opaque reference to a stored card.
type PaymentToken struct {
	TokenID    string `json:"token_id"`
	CustomerID string `json:"customer_id"`
}
