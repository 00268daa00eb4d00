package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wastefront/pricing-service/internal/core/event"
	"github.com/wastefront/pricing-service/internal/port"
)

// InvoiceHandler listens for PriceCalculated events and bills business
// customers through the invoice API. A failed invoice call is logged and
// swallowed; it never reaches the price response.
type InvoiceHandler struct {
	sender port.InvoiceSender
	logger *zap.Logger
}

func NewInvoiceHandler(sender port.InvoiceSender, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{sender: sender, logger: logger}
}

func (h *InvoiceHandler) Handle(ctx context.Context, evt event.Event) {
	calculated, ok := evt.(event.PriceCalculated)
	if !ok {
		return
	}

	if !calculated.IsBusinessCustomer() {
		return
	}
	if calculated.CustomerEmail == "" {
		h.logger.Warn("cannot invoice business customer without email",
			zap.String("visitor_id", calculated.VisitorID))
		return
	}

	invoice := port.Invoice{
		Email:    calculated.CustomerEmail,
		Amount:   calculated.CalculatedPrice.Amount(),
		Currency: calculated.CalculatedPrice.Currency(),
	}

	if err := h.sender.SendInvoice(ctx, invoice); err != nil {
		h.logger.Error("failed to send invoice",
			zap.String("visitor_id", calculated.VisitorID),
			zap.String("email", calculated.CustomerEmail),
			zap.Error(err))
		return
	}

	h.logger.Info("invoice sent",
		zap.String("visitor_id", calculated.VisitorID),
		zap.String("email", calculated.CustomerEmail))
}
