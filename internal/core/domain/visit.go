package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingVisitID  = errors.New("visit must have an id")
	ErrMissingPersonID = errors.New("visit must be associated with a person")
	ErrNoFractions     = errors.New("visit must have at least one dropped fraction")
)

// Visit is a waste disposal visit by one person. Identity is the visit ID;
// the fraction list is fixed at construction.
type Visit struct {
	ID       string
	PersonID string
	Date     time.Time

	fractions []DroppedFraction
}

func NewVisit(id, personID string, date time.Time, fractions []DroppedFraction) (*Visit, error) {
	if id == "" {
		return nil, ErrMissingVisitID
	}
	if personID == "" {
		return nil, ErrMissingPersonID
	}
	if len(fractions) == 0 {
		return nil, ErrNoFractions
	}

	v := &Visit{
		ID:        id,
		PersonID:  personID,
		Date:      date,
		fractions: make([]DroppedFraction, len(fractions)),
	}
	copy(v.fractions, fractions)
	return v, nil
}

func (v *Visit) Fractions() []DroppedFraction {
	out := make([]DroppedFraction, len(v.fractions))
	copy(out, v.fractions)
	return out
}

// FractionPricer prices a single dropped fraction.
type FractionPricer func(ctx context.Context, fraction DroppedFraction) (Price, error)

// BasePrice sums the price of every fraction dropped during this visit,
// before any surcharge.
func (v *Visit) BasePrice(ctx context.Context, pricer FractionPricer) (Price, error) {
	total := ZeroPrice()
	for _, f := range v.fractions {
		price, err := pricer(ctx, f)
		if err != nil {
			return Price{}, fmt.Errorf("price fraction %s: %w", f.Type(), err)
		}
		total = total.Add(price)
	}
	return total, nil
}

func (v *Visit) TotalWeight() Weight {
	var total Weight
	for _, f := range v.fractions {
		total = total.Add(f.Weight())
	}
	return total
}

func (v *Visit) HasFraction(t FractionType) bool {
	for _, f := range v.fractions {
		if f.Type() == t {
			return true
		}
	}
	return false
}

// Year and Month identify the calendar month the visit falls in, used for
// the monthly surcharge counter.
func (v *Visit) YearMonth() (int, time.Month) {
	return v.Date.Year(), v.Date.Month()
}
