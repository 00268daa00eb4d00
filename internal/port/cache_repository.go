package port

import (
	"context"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

// VisitorCache caches visitor lookups from the external directory so one
// request does not pay for a full directory fetch on every call.
type VisitorCache interface {
	// GetVisitor returns the cached visitor, or nil on a cache miss.
	GetVisitor(ctx context.Context, id string) (*domain.Visitor, error)

	// PutVisitor caches a visitor for the adapter's TTL.
	PutVisitor(ctx context.Context, visitor *domain.Visitor) error

	// Invalidate drops all cached visitors.
	Invalidate(ctx context.Context) error
}
