package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

// VisitorDirectory looks a visitor up in the external visitor API.
type VisitorDirectory interface {
	// FindVisitor returns the visitor, or nil when the directory does not
	// know the id.
	FindVisitor(ctx context.Context, id string) (*domain.Visitor, error)
}

// Invoice is the payload sent to the external invoice API.
type Invoice struct {
	Email    string
	Amount   decimal.Decimal
	Currency domain.Currency
}

// InvoiceSender submits invoices for business customers.
type InvoiceSender interface {
	SendInvoice(ctx context.Context, invoice Invoice) error
}
