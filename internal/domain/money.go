package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Money is a fixed-point monetary amount in a single currency.
// Decimal arithmetic keeps repeated cart additions free of float drift.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// DefaultCurrency is the store-wide currency for catalog prices.
// The reference storefront prices everything in one currency.
var DefaultCurrency = currency.USD.String()

// NewMoney creates a Money value in the default currency.
func NewMoney(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

// MoneyFromString parses a decimal string ("12.99") into Money.
func MoneyFromString(s string) (Money, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return NewMoney(amount), nil
}

// Add returns the sum of two amounts.
// Both values must share a currency; mixing currencies is a programming error.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// MulInt returns the amount multiplied by a whole quantity.
func (m Money) MulInt(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), Currency: m.Currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// String renders the amount with its currency symbol and two decimal places.
func (m Money) String() string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return m.Amount.StringFixed(2) + " " + m.Currency
	}
	return fmt.Sprintf("%v%s", currency.NarrowSymbol(unit), m.Amount.StringFixed(2))
}
