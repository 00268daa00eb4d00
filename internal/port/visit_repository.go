package port

import (
	"context"
	"time"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

type VisitRepository interface {
	// Save stores a visit. Saving happens before the monthly count is read,
	// so the count always includes the visit being priced.
	Save(ctx context.Context, visit *domain.Visit) error

	// CountForPersonInMonth returns how many visits the person made in the
	// given calendar month, including the current one once saved.
	CountForPersonInMonth(ctx context.Context, personID string, year int, month time.Month) (int, error)

	// FindForPersonInMonth returns the person's visits in the given month.
	FindForPersonInMonth(ctx context.Context, personID string, year int, month time.Month) ([]*domain.Visit, error)

	// Reset clears all stored visits. Used when a new scenario starts.
	Reset(ctx context.Context) error
}

type VisitorRepository interface {
	// Save stores or updates a visitor.
	Save(ctx context.Context, visitor *domain.Visitor) error

	// FindByID returns the visitor, or nil when unknown.
	FindByID(ctx context.Context, id string) (*domain.Visitor, error)

	// Reset clears all stored visitors.
	Reset(ctx context.Context) error
}
