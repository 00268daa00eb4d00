package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wastefront/pricing-service/internal/port"
)

// InvoiceAPIClient submits invoices to the external invoice API.
type InvoiceAPIClient struct {
	baseURL    string
	authToken  string
	workshopID string
	httpClient *http.Client
}

func NewInvoiceAPIClient(baseURL, authToken, workshopID string) *InvoiceAPIClient {
	return &InvoiceAPIClient{
		baseURL:    baseURL,
		authToken:  authToken,
		workshopID: workshopID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type invoicePayload struct {
	Email           string  `json:"email"`
	InvoiceAmount   float64 `json:"invoice_amount"`
	InvoiceCurrency string  `json:"invoice_currency"`
}

func (c *InvoiceAPIClient) SendInvoice(ctx context.Context, invoice port.Invoice) error {
	body, err := json.Marshal(invoicePayload{
		Email:           invoice.Email,
		InvoiceAmount:   invoice.Amount.InexactFloat64(),
		InvoiceCurrency: string(invoice.Currency),
	})
	if err != nil {
		return fmt.Errorf("encode invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/invoice", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-auth-token", c.authToken)
	req.Header.Set("x-workshop-id", c.workshopID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("invoice api returned %d", resp.StatusCode)
	}
	return nil
}
