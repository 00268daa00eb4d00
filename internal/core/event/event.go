package event

import (
	"time"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

// Event is a domain event: an immutable fact about something that happened.
type Event interface {
	Name() string
	OccurredAt() time.Time
}

// PriceCalculated is emitted after a visit price has been computed. It feeds
// the invoice flow for business customers.
type PriceCalculated struct {
	EventID         string
	VisitorID       string
	VisitID         string
	CalculatedPrice domain.Price
	CustomerType    domain.CustomerType
	CustomerEmail   string
	CustomerCity    string
	At              time.Time
}

func (e PriceCalculated) Name() string          { return "price.calculated" }
func (e PriceCalculated) OccurredAt() time.Time { return e.At }

func (e PriceCalculated) IsBusinessCustomer() bool {
	return e.CustomerType.IsBusiness()
}
