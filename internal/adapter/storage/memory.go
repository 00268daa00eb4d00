package storage

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

// In-memory repositories, the default wiring. Unlike the rest of the request
// flow the stores outlive a single request, so access is mutex-guarded.

type MemoryVisitRepository struct {
	mu     sync.RWMutex
	visits map[string]*domain.Visit
}

func NewMemoryVisitRepository() *MemoryVisitRepository {
	return &MemoryVisitRepository{visits: make(map[string]*domain.Visit)}
}

func (r *MemoryVisitRepository) Save(_ context.Context, visit *domain.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits[visit.ID] = visit
	return nil
}

func (r *MemoryVisitRepository) CountForPersonInMonth(ctx context.Context, personID string, year int, month time.Month) (int, error) {
	visits, err := r.FindForPersonInMonth(ctx, personID, year, month)
	if err != nil {
		return 0, err
	}
	return len(visits), nil
}

func (r *MemoryVisitRepository) FindForPersonInMonth(_ context.Context, personID string, year int, month time.Month) ([]*domain.Visit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Visit
	for _, v := range r.visits {
		vYear, vMonth := v.YearMonth()
		if v.PersonID == personID && vYear == year && vMonth == month {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *MemoryVisitRepository) Reset(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = make(map[string]*domain.Visit)
	return nil
}

type MemoryVisitorRepository struct {
	mu       sync.RWMutex
	visitors map[string]*domain.Visitor
}

func NewMemoryVisitorRepository() *MemoryVisitorRepository {
	return &MemoryVisitorRepository{visitors: make(map[string]*domain.Visitor)}
}

func (r *MemoryVisitorRepository) Save(_ context.Context, visitor *domain.Visitor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visitors[visitor.ID] = visitor
	return nil
}

func (r *MemoryVisitorRepository) FindByID(_ context.Context, id string) (*domain.Visitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visitors[id], nil
}

func (r *MemoryVisitorRepository) Reset(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visitors = make(map[string]*domain.Visitor)
	return nil
}

type exemptionKey struct {
	visitorID string
	year      int
}

type MemoryExemptionRepository struct {
	mu    sync.Mutex
	usage map[exemptionKey]decimal.Decimal
}

func NewMemoryExemptionRepository() *MemoryExemptionRepository {
	return &MemoryExemptionRepository{usage: make(map[exemptionKey]decimal.Decimal)}
}

func (r *MemoryExemptionRepository) UsedInYear(_ context.Context, visitorID string, year int) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	used, ok := r.usage[exemptionKey{visitorID, year}]
	if !ok {
		return decimal.Zero, nil
	}
	return used, nil
}

func (r *MemoryExemptionRepository) Record(_ context.Context, visitorID string, year int, kilograms decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := exemptionKey{visitorID, year}
	r.usage[key] = r.usage[key].Add(kilograms)
	return nil
}

func (r *MemoryExemptionRepository) Reset(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage = make(map[exemptionKey]decimal.Decimal)
	return nil
}
