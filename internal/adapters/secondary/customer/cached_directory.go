package customer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/lorrc/incident-desk/internal/core/domain"
	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

// CachedDirectory wraps a directory with a Redis read-through cache. Redis
// failures fall back to the wrapped directory and never fail a lookup.
type CachedDirectory struct {
	base   ports.CustomerDirectory
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.CustomerDirectory = (*CachedDirectory)(nil)

// NewCachedDirectory creates a caching wrapper around base.
func NewCachedDirectory(base ports.CustomerDirectory, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	if base == nil {
		panic("customer.NewCachedDirectory: base directory is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedDirectory{
		base:   base,
		redis:  client,
		ttl:    ttl,
		logger: logger.With("component", "customer_cache"),
	}
}

func (c *CachedDirectory) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	if customer, ok := c.load(ctx, customerID); ok {
		return customer, nil
	}

	customer, err := c.base.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, customerID, customer)
	return customer, nil
}

func (c *CachedDirectory) load(ctx context.Context, customerID string) (*domain.Customer, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, cacheKey(customerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "customer cache read failed", "customer_id", customerID, "error", err)
		}
		return nil, false
	}

	var customer domain.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		_ = c.redis.Del(ctx, cacheKey(customerID)).Err()
		return nil, false
	}
	return &customer, true
}

func (c *CachedDirectory) store(ctx context.Context, customerID string, customer *domain.Customer) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(customer)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(customerID), data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "customer cache write failed", "customer_id", customerID, "error", err)
	}
}

func cacheKey(customerID string) string {
	return "customer:" + customerID
}
