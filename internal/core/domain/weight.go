package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNegativeWeight = errors.New("weight must not be negative")

// Weight is the amount of waste dropped off, in kilograms.
type Weight struct {
	kilograms decimal.Decimal
}

func NewWeight(kilograms decimal.Decimal) (Weight, error) {
	if kilograms.IsNegative() {
		return Weight{}, ErrNegativeWeight
	}
	return Weight{kilograms: kilograms}, nil
}

func (w Weight) Kilograms() decimal.Decimal {
	return w.kilograms
}

func (w Weight) Add(other Weight) Weight {
	return Weight{kilograms: w.kilograms.Add(other.kilograms)}
}

func (w Weight) String() string {
	return w.kilograms.String() + " kg"
}
