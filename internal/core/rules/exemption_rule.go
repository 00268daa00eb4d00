package rules

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wastefront/pricing-service/internal/core/domain"
	"github.com/wastefront/pricing-service/internal/port"
)

// OakCityBusinessConstructionRule gives Oak City business customers tiered
// construction-waste pricing: the first 1000 kg per calendar year is charged
// at the low rate, everything above at the high rate. Usage is tracked per
// visitor and keyed by year, so the exemption resets every calendar year.
type OakCityBusinessConstructionRule struct {
	exemptions port.ExemptionRepository

	exemptionLimit decimal.Decimal
	lowRate        decimal.Decimal
	highRate       decimal.Decimal
	fallback       rateTable
}

func NewOakCityBusinessConstructionRule(exemptions port.ExemptionRepository) *OakCityBusinessConstructionRule {
	return &OakCityBusinessConstructionRule{
		exemptions:     exemptions,
		exemptionLimit: decimal.NewFromInt(1000),
		lowRate:        decimal.RequireFromString("0.21"),
		highRate:       decimal.RequireFromString("0.29"),
		fallback:       rates("0.08", "0.21"),
	}
}

func (r *OakCityBusinessConstructionRule) CanApply(pctx PricingContext) bool {
	return pctx.City == CityOakCity &&
		pctx.IsBusiness() &&
		pctx.VisitorID != "" &&
		!pctx.VisitDate.IsZero()
}

func (r *OakCityBusinessConstructionRule) CalculatePrice(ctx context.Context, fraction domain.DroppedFraction, pctx PricingContext) (domain.Price, error) {
	if fraction.Type() != domain.FractionConstructionWaste {
		// Regular Oak City business rates for non-construction fractions.
		return r.fallback.price(fraction)
	}

	year := pctx.VisitDate.Year()
	used, err := r.exemptions.UsedInYear(ctx, pctx.VisitorID, year)
	if err != nil {
		return domain.Price{}, fmt.Errorf("read exemption usage: %w", err)
	}

	kilograms := fraction.Weight().Kilograms()
	remaining := decimal.Max(decimal.Zero, r.exemptionLimit.Sub(used))
	lowWeight := decimal.Min(kilograms, remaining)
	highWeight := decimal.Max(decimal.Zero, kilograms.Sub(remaining))

	amount := r.lowRate.Mul(lowWeight).Add(r.highRate.Mul(highWeight))
	price, err := domain.NewPrice(amount, domain.CurrencyEUR)
	if err != nil {
		return domain.Price{}, err
	}

	if err := r.exemptions.Record(ctx, pctx.VisitorID, year, kilograms); err != nil {
		return domain.Price{}, fmt.Errorf("record exemption usage: %w", err)
	}

	return price, nil
}

// Priority beats the plain Oak City rule so business construction drops hit
// the tiered rates.
func (r *OakCityBusinessConstructionRule) Priority() int { return 5 }
