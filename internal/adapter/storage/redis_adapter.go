package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wastefront/pricing-service/internal/core/domain"
)

const (
	visitorKeyPrefix = "visitor:"
	visitorTTL       = 15 * time.Minute
)

// RedisAdapter caches visitor directory lookups. A miss returns nil and the
// caller falls through to the external API.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

type cachedVisitor struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Address string `json:"address"`
	City    string `json:"city"`
	CardID  string `json:"card_id"`
	Email   string `json:"email"`
}

func (r *RedisAdapter) GetVisitor(ctx context.Context, id string) (*domain.Visitor, error) {
	raw, err := r.client.Get(ctx, visitorKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached visitor: %w", err)
	}

	var cached cachedVisitor
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached visitor: %w", err)
	}
	return &domain.Visitor{
		ID:      cached.ID,
		Type:    domain.CustomerType(cached.Type),
		Address: cached.Address,
		City:    cached.City,
		CardID:  cached.CardID,
		Email:   cached.Email,
	}, nil
}

func (r *RedisAdapter) PutVisitor(ctx context.Context, visitor *domain.Visitor) error {
	raw, err := json.Marshal(cachedVisitor{
		ID:      visitor.ID,
		Type:    string(visitor.Type),
		Address: visitor.Address,
		City:    visitor.City,
		CardID:  visitor.CardID,
		Email:   visitor.Email,
	})
	if err != nil {
		return fmt.Errorf("encode visitor: %w", err)
	}
	return r.client.Set(ctx, visitorKeyPrefix+visitor.ID, raw, visitorTTL).Err()
}

func (r *RedisAdapter) Invalidate(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, visitorKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete cached visitor: %w", err)
		}
	}
	return iter.Err()
}
