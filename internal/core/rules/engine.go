package rules

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

// PricingContext carries the facts a rule needs to decide whether it applies
// and what to charge. One is built per price calculation.
type PricingContext struct {
	City         string
	CustomerType domain.CustomerType
	VisitorID    string
	Address      string
	VisitDate    time.Time
}

func (c PricingContext) IsBusiness() bool {
	return c.CustomerType.IsBusiness()
}

// Rule prices a single dropped fraction. Lower priority values are evaluated
// first.
type Rule interface {
	CanApply(pctx PricingContext) bool
	CalculatePrice(ctx context.Context, fraction domain.DroppedFraction, pctx PricingContext) (domain.Price, error)
	Priority() int
}

var ErrNoApplicableRule = errors.New("no applicable pricing rule")

// Engine holds an ordered rule set and applies the first rule that matches.
// The default rule always matches, so with the standard rule set
// CalculatePrice is total.
type Engine struct {
	rules []Rule
}

func NewEngine(ruleSet ...Rule) *Engine {
	e := &Engine{rules: make([]Rule, len(ruleSet))}
	copy(e.rules, ruleSet)
	e.sortRules()
	return e
}

// AddRule registers an extra rule, keeping priority order.
func (e *Engine) AddRule(r Rule) {
	e.rules = append(e.rules, r)
	e.sortRules()
}

func (e *Engine) sortRules() {
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority() < e.rules[j].Priority()
	})
}

// CalculatePrice applies the first applicable rule to the fraction.
func (e *Engine) CalculatePrice(ctx context.Context, fraction domain.DroppedFraction, pctx PricingContext) (domain.Price, error) {
	for _, r := range e.rules {
		if r.CanApply(pctx) {
			return r.CalculatePrice(ctx, fraction, pctx)
		}
	}
	return domain.Price{}, ErrNoApplicableRule
}

// ApplicableRules returns every rule that matches the context, in priority
// order. Used by tests to assert precedence.
func (e *Engine) ApplicableRules(pctx PricingContext) []Rule {
	var out []Rule
	for _, r := range e.rules {
		if r.CanApply(pctx) {
			out = append(out, r)
		}
	}
	return out
}
