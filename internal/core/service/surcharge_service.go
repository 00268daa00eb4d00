package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wastefront/pricing-service/internal/core/domain"
	"github.com/wastefront/pricing-service/internal/port"
)

const surchargeThreshold = 3

var surchargeFactor = decimal.RequireFromString("1.05")

// MonthlySurchargeService adds a 5% surcharge once an individual visitor has
// dropped off waste 3 or more times in one calendar month. The counter
// restarts each month and the visit being priced is already saved, so it
// counts toward the threshold. Business customers are exempt, and visitors
// the repository does not know are never surcharged.
type MonthlySurchargeService struct {
	visits   port.VisitRepository
	visitors port.VisitorRepository
}

func NewMonthlySurchargeService(visits port.VisitRepository, visitors port.VisitorRepository) *MonthlySurchargeService {
	return &MonthlySurchargeService{visits: visits, visitors: visitors}
}

// TotalWithSurcharge returns the base price, multiplied by 1.05 when the
// surcharge applies. Prospective only: already-priced visits are never
// recomputed.
func (s *MonthlySurchargeService) TotalWithSurcharge(ctx context.Context, visit *domain.Visit, base domain.Price) (domain.Price, error) {
	applies, err := s.Applies(ctx, visit)
	if err != nil {
		return domain.Price{}, err
	}
	if !applies {
		return base, nil
	}
	return base.Mul(surchargeFactor), nil
}

// Applies reports whether this visit crosses the monthly threshold.
func (s *MonthlySurchargeService) Applies(ctx context.Context, visit *domain.Visit) (bool, error) {
	visitor, err := s.visitors.FindByID(ctx, visit.PersonID)
	if err != nil {
		return false, fmt.Errorf("look up visitor: %w", err)
	}
	if visitor == nil || visitor.Type != domain.CustomerIndividual {
		return false, nil
	}

	year, month := visit.YearMonth()
	count, err := s.visits.CountForPersonInMonth(ctx, visit.PersonID, year, month)
	if err != nil {
		return false, fmt.Errorf("count monthly visits: %w", err)
	}
	return count >= surchargeThreshold, nil
}
