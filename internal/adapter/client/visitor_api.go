package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wastefront/pricing-service/internal/core/domain"
	"github.com/wastefront/pricing-service/internal/port"
)

// VisitorAPIClient resolves visitors against the external visitor directory.
// The directory only exposes a full listing, so the client fetches the list
// and picks the matching id, caching hits through the optional VisitorCache.
type VisitorAPIClient struct {
	baseURL    string
	authToken  string
	workshopID string
	httpClient *http.Client
	cache      port.VisitorCache
	logger     *zap.Logger
}

func NewVisitorAPIClient(baseURL, authToken, workshopID string, cache port.VisitorCache, logger *zap.Logger) *VisitorAPIClient {
	return &VisitorAPIClient{
		baseURL:    baseURL,
		authToken:  authToken,
		workshopID: workshopID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		logger:     logger,
	}
}

type visitorDTO struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Address string `json:"address"`
	City    string `json:"city"`
	CardID  string `json:"card_id"`
	Email   string `json:"email"`
}

func (c *VisitorAPIClient) FindVisitor(ctx context.Context, id string) (*domain.Visitor, error) {
	if c.cache != nil {
		cached, err := c.cache.GetVisitor(ctx, id)
		if err != nil {
			c.logger.Warn("visitor cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	visitors, err := c.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, dto := range visitors {
		if dto.ID != id {
			continue
		}
		visitor := &domain.Visitor{
			ID:      dto.ID,
			Type:    domain.CustomerType(dto.Type),
			Address: dto.Address,
			City:    dto.City,
			CardID:  dto.CardID,
			Email:   dto.Email,
		}
		if c.cache != nil {
			if err := c.cache.PutVisitor(ctx, visitor); err != nil {
				c.logger.Warn("visitor cache write failed", zap.Error(err))
			}
		}
		return visitor, nil
	}
	return nil, nil
}

func (c *VisitorAPIClient) fetchAll(ctx context.Context) ([]visitorDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users", nil)
	if err != nil {
		return nil, fmt.Errorf("build visitor request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-auth-token", c.authToken)
	req.Header.Set("x-workshop-id", c.workshopID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch visitors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("visitor api returned %d", resp.StatusCode)
	}

	var visitors []visitorDTO
	if err := json.NewDecoder(resp.Body).Decode(&visitors); err != nil {
		return nil, fmt.Errorf("decode visitors: %w", err)
	}
	return visitors, nil
}
