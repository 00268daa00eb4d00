package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wastefront/pricing-service/internal/core/domain"
	"github.com/wastefront/pricing-service/internal/core/event"
	"github.com/wastefront/pricing-service/internal/core/rules"
	"github.com/wastefront/pricing-service/internal/port"
)

var ErrInvalidVisit = errors.New("invalid visit data")

type FractionInput struct {
	Type          string
	AmountDropped decimal.Decimal
}

type CalculateRequest struct {
	Date      string
	PersonID  string
	VisitID   string
	Fractions []FractionInput
}

type PriceResponse struct {
	PriceAmount   decimal.Decimal
	PriceCurrency domain.Currency
	PersonID      string
	VisitID       string
}

// PriceCalculator orchestrates one price calculation: build the visit,
// resolve the visitor, store the visit, run the rule engine per fraction,
// apply the monthly surcharge and emit the PriceCalculated event.
type PriceCalculator struct {
	directory  port.VisitorDirectory
	engine     *rules.Engine
	surcharge  *MonthlySurchargeService
	visits     port.VisitRepository
	visitors   port.VisitorRepository
	dispatcher *event.Dispatcher
	logger     *zap.Logger
}

func NewPriceCalculator(
	directory port.VisitorDirectory,
	engine *rules.Engine,
	surcharge *MonthlySurchargeService,
	visits port.VisitRepository,
	visitors port.VisitorRepository,
	dispatcher *event.Dispatcher,
	logger *zap.Logger,
) *PriceCalculator {
	return &PriceCalculator{
		directory:  directory,
		engine:     engine,
		surcharge:  surcharge,
		visits:     visits,
		visitors:   visitors,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (c *PriceCalculator) CalculatePrice(ctx context.Context, req CalculateRequest) (PriceResponse, error) {
	visit, err := c.buildVisit(req)
	if err != nil {
		return PriceResponse{}, err
	}

	visitor := c.lookupVisitor(ctx, visit.PersonID)
	if visitor != nil {
		if err := c.visitors.Save(ctx, visitor); err != nil {
			return PriceResponse{}, fmt.Errorf("save visitor: %w", err)
		}
	}

	// Saved before the surcharge counts monthly visits, so the current
	// visit is part of the count.
	if err := c.visits.Save(ctx, visit); err != nil {
		return PriceResponse{}, fmt.Errorf("save visit: %w", err)
	}

	pctx := rules.PricingContext{
		VisitorID: visit.PersonID,
		VisitDate: visit.Date,
	}
	var email string
	if visitor != nil {
		pctx.City = visitor.City
		pctx.CustomerType = visitor.Type
		pctx.Address = visitor.Address
		email = visitor.Email
	}

	base, err := visit.BasePrice(ctx, func(ctx context.Context, fraction domain.DroppedFraction) (domain.Price, error) {
		return c.engine.CalculatePrice(ctx, fraction, pctx)
	})
	if err != nil {
		return PriceResponse{}, err
	}

	total, err := c.surcharge.TotalWithSurcharge(ctx, visit, base)
	if err != nil {
		return PriceResponse{}, err
	}

	c.dispatcher.Dispatch(ctx, event.PriceCalculated{
		EventID:         uuid.NewString(),
		VisitorID:       visit.PersonID,
		VisitID:         visit.ID,
		CalculatedPrice: total,
		CustomerType:    pctx.CustomerType,
		CustomerEmail:   email,
		CustomerCity:    pctx.City,
		At:              time.Now(),
	})

	c.logger.Info("price calculated",
		zap.String("visit_id", visit.ID),
		zap.String("person_id", visit.PersonID),
		zap.String("price", total.String()))

	return PriceResponse{
		PriceAmount:   total.Amount(),
		PriceCurrency: total.Currency(),
		PersonID:      visit.PersonID,
		VisitID:       visit.ID,
	}, nil
}

func (c *PriceCalculator) buildVisit(req CalculateRequest) (*domain.Visit, error) {
	date, err := parseVisitDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVisit, err)
	}

	fractions := make([]domain.DroppedFraction, 0, len(req.Fractions))
	for _, in := range req.Fractions {
		fractionType, err := domain.ParseFractionType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidVisit, err)
		}
		weight, err := domain.NewWeight(in.AmountDropped)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidVisit, err)
		}
		fractions = append(fractions, domain.NewDroppedFraction(fractionType, weight))
	}

	visitID := req.VisitID
	if visitID == "" {
		visitID = uuid.NewString()
	}

	visit, err := domain.NewVisit(visitID, req.PersonID, date, fractions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVisit, err)
	}
	return visit, nil
}

// lookupVisitor resolves the visitor from the external directory. Lookup
// failures fall back to default pricing rather than failing the request.
func (c *PriceCalculator) lookupVisitor(ctx context.Context, personID string) *domain.Visitor {
	visitor, err := c.directory.FindVisitor(ctx, personID)
	if err != nil {
		c.logger.Warn("visitor lookup failed",
			zap.String("person_id", personID),
			zap.Error(err))
		return nil
	}
	return visitor
}

func parseVisitDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}
