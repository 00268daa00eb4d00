package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// ExemptionRepository tracks cumulative construction waste per visitor per
// calendar year for the Oak City business exemption. Usage resets each year
// simply by keying on the year.
type ExemptionRepository interface {
	// UsedInYear returns the kilograms of construction waste already recorded
	// for the visitor in the given calendar year.
	UsedInYear(ctx context.Context, visitorID string, year int) (decimal.Decimal, error)

	// Record adds dropped construction waste to the visitor's yearly total.
	Record(ctx context.Context, visitorID string, year int, kilograms decimal.Decimal) error

	// Reset clears all recorded usage.
	Reset(ctx context.Context) error
}
