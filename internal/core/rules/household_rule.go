package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wastefront/pricing-service/internal/core/domain"
	"github.com/wastefront/pricing-service/internal/port"
)

// OakCityHouseholdConstructionRule gives Oak City individual customers tiered
// construction-waste pricing: the first 500 kg per calendar year is charged
// at the low rate, everything above at the high rate. The limit is shared by
// everyone living at the same address, so usage is tracked per household
// rather than per visitor.
type OakCityHouseholdConstructionRule struct {
	exemptions port.ExemptionRepository

	exemptionLimit decimal.Decimal
	lowRate        decimal.Decimal
	highRate       decimal.Decimal
	fallback       rateTable
}

func NewOakCityHouseholdConstructionRule(exemptions port.ExemptionRepository) *OakCityHouseholdConstructionRule {
	return &OakCityHouseholdConstructionRule{
		exemptions:     exemptions,
		exemptionLimit: decimal.NewFromInt(500),
		lowRate:        decimal.RequireFromString("0.125"),
		highRate:       decimal.RequireFromString("0.20"),
		fallback:       rates("0.08", "0.19"),
	}
}

func (r *OakCityHouseholdConstructionRule) CanApply(pctx PricingContext) bool {
	return pctx.City == CityOakCity &&
		pctx.CustomerType == domain.CustomerIndividual &&
		pctx.VisitorID != "" &&
		!pctx.VisitDate.IsZero()
}

func (r *OakCityHouseholdConstructionRule) CalculatePrice(ctx context.Context, fraction domain.DroppedFraction, pctx PricingContext) (domain.Price, error) {
	if fraction.Type() != domain.FractionConstructionWaste {
		// Regular Oak City individual rates for non-construction fractions.
		return r.fallback.price(fraction)
	}

	kilograms := fraction.Weight().Kilograms()

	household := HouseholdKey(pctx.City, pctx.Address)
	if household == "" {
		// No address on record means no household to share the limit with:
		// the whole drop is charged at the high rate.
		return domain.NewPrice(r.highRate.Mul(kilograms), domain.CurrencyEUR)
	}

	year := pctx.VisitDate.Year()
	used, err := r.exemptions.UsedInYear(ctx, household, year)
	if err != nil {
		return domain.Price{}, fmt.Errorf("read exemption usage: %w", err)
	}

	remaining := decimal.Max(decimal.Zero, r.exemptionLimit.Sub(used))
	lowWeight := decimal.Min(kilograms, remaining)
	highWeight := decimal.Max(decimal.Zero, kilograms.Sub(remaining))

	amount := r.lowRate.Mul(lowWeight).Add(r.highRate.Mul(highWeight))
	price, err := domain.NewPrice(amount, domain.CurrencyEUR)
	if err != nil {
		return domain.Price{}, err
	}

	if err := r.exemptions.Record(ctx, household, year, kilograms); err != nil {
		return domain.Price{}, fmt.Errorf("record exemption usage: %w", err)
	}

	return price, nil
}

// Priority matches the business construction exemption; CanApply keeps the
// two disjoint by customer type.
func (r *OakCityHouseholdConstructionRule) Priority() int { return 5 }

// HouseholdKey identifies a household by its normalized city and address.
// People at the same address map to the same key. Empty when the address is
// unknown.
func HouseholdKey(city, address string) string {
	if address == "" {
		return ""
	}
	normalized := strings.ReplaceAll(strings.ToLower(address), " ", "")
	return "household:" + strings.ToLower(city) + ":" + normalized
}
