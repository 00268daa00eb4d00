package rules

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

const (
	CityPineville = "Pineville"
	CityOakCity   = "Oak City"
)

type rateTable map[domain.FractionType]decimal.Decimal

func rates(green, construction string) rateTable {
	return rateTable{
		domain.FractionGreenWaste:        decimal.RequireFromString(green),
		domain.FractionConstructionWaste: decimal.RequireFromString(construction),
	}
}

func (t rateTable) price(fraction domain.DroppedFraction) (domain.Price, error) {
	rate, ok := t[fraction.Type()]
	if !ok {
		rate = decimal.Zero
	}
	return domain.NewPrice(rate.Mul(fraction.Weight().Kilograms()), domain.CurrencyEUR)
}

// PinevilleRule prices visits from Pineville.
type PinevilleRule struct {
	individual rateTable
	business   rateTable
}

func NewPinevilleRule() *PinevilleRule {
	return &PinevilleRule{
		individual: rates("0.10", "0.15"),
		business:   rates("0.12", "0.13"),
	}
}

func (r *PinevilleRule) CanApply(pctx PricingContext) bool {
	return pctx.City == CityPineville
}

func (r *PinevilleRule) CalculatePrice(_ context.Context, fraction domain.DroppedFraction, pctx PricingContext) (domain.Price, error) {
	if pctx.IsBusiness() {
		return r.business.price(fraction)
	}
	return r.individual.price(fraction)
}

func (r *PinevilleRule) Priority() int { return 10 }

// OakCityRule prices visits from Oak City.
type OakCityRule struct {
	individual rateTable
	business   rateTable
}

func NewOakCityRule() *OakCityRule {
	return &OakCityRule{
		individual: rates("0.08", "0.19"),
		business:   rates("0.08", "0.21"),
	}
}

func (r *OakCityRule) CanApply(pctx PricingContext) bool {
	return pctx.City == CityOakCity
}

func (r *OakCityRule) CalculatePrice(_ context.Context, fraction domain.DroppedFraction, pctx PricingContext) (domain.Price, error) {
	if pctx.IsBusiness() {
		return r.business.price(fraction)
	}
	return r.individual.price(fraction)
}

func (r *OakCityRule) Priority() int { return 10 }

// BusinessDiscountRule covers business customers from cities without a
// city-specific rule.
type BusinessDiscountRule struct {
	discounted rateTable
}

func NewBusinessDiscountRule() *BusinessDiscountRule {
	return &BusinessDiscountRule{discounted: rates("0.10", "0.19")}
}

func (r *BusinessDiscountRule) CanApply(pctx PricingContext) bool {
	return pctx.IsBusiness() && pctx.City != CityPineville && pctx.City != CityOakCity
}

func (r *BusinessDiscountRule) CalculatePrice(_ context.Context, fraction domain.DroppedFraction, _ PricingContext) (domain.Price, error) {
	return r.discounted.price(fraction)
}

func (r *BusinessDiscountRule) Priority() int { return 50 }

// DefaultRule is the fallback. It always applies, which makes the engine a
// total function over any context.
type DefaultRule struct {
	standard rateTable
}

func NewDefaultRule() *DefaultRule {
	return &DefaultRule{standard: rates("0.10", "0.19")}
}

func (r *DefaultRule) CanApply(PricingContext) bool { return true }

func (r *DefaultRule) CalculatePrice(_ context.Context, fraction domain.DroppedFraction, _ PricingContext) (domain.Price, error) {
	return r.standard.price(fraction)
}

func (r *DefaultRule) Priority() int { return 1000 }

// DefaultRules returns the standard stateless rule set in priority order.
// Rules with dependencies, like the Oak City construction exemption, are
// added separately by the composition root.
func DefaultRules() []Rule {
	return []Rule{
		NewPinevilleRule(),
		NewOakCityRule(),
		NewBusinessDiscountRule(),
		NewDefaultRule(),
	}
}
