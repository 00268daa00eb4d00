package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyEUR Currency = "EUR"
)

var ErrNegativeAmount = errors.New("price amount must not be negative")

// Price is an immutable money value. All prices in the system are EUR.
type Price struct {
	amount   decimal.Decimal
	currency Currency
}

func NewPrice(amount decimal.Decimal, currency Currency) (Price, error) {
	if amount.IsNegative() {
		return Price{}, ErrNegativeAmount
	}
	return Price{amount: amount, currency: currency}, nil
}

// ZeroPrice returns a zero EUR price.
func ZeroPrice() Price {
	return Price{amount: decimal.Zero, currency: CurrencyEUR}
}

func (p Price) Amount() decimal.Decimal {
	return p.amount
}

func (p Price) Currency() Currency {
	return p.currency
}

func (p Price) Add(other Price) Price {
	return Price{amount: p.amount.Add(other.amount), currency: p.currency}
}

func (p Price) Mul(factor decimal.Decimal) Price {
	return Price{amount: p.amount.Mul(factor), currency: p.currency}
}

func (p Price) Equal(other Price) bool {
	return p.currency == other.currency && p.amount.Equal(other.amount)
}

func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.amount.String(), p.currency)
}
