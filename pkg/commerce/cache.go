// pkg/commerce/cache.go
package commerce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedStore decorates a Store with a Redis cache for the stats counts
// shown on the account page. Reads of the record lists stay uncached; the
// counts query touches four tables and is the one worth shielding.
type cachedStore struct {
	Store
	rdb *redis.Client
	ttl time.Duration
}

// NewCachedStore wraps inner with a Counts cache. A nil client returns inner
// unchanged, so callers can wire it unconditionally.
func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) Store {
	if rdb == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &cachedStore{Store: inner, rdb: rdb, ttl: ttl}
}

func statsKey(tenantID string) string { return "storesight:stats:" + tenantID }

func (s *cachedStore) Counts(ctx context.Context, tenantID string) (Stats, error) {
	if b, err := s.rdb.Get(ctx, statsKey(tenantID)).Bytes(); err == nil {
		var st Stats
		if json.Unmarshal(b, &st) == nil {
			return st, nil
		}
	}
	st, err := s.Store.Counts(ctx, tenantID)
	if err != nil {
		return Stats{}, err
	}
	if b, err := json.Marshal(st); err == nil {
		_ = s.rdb.Set(ctx, statsKey(tenantID), b, s.ttl).Err()
	}
	return st, nil
}

func (s *cachedStore) AddProduct(ctx context.Context, tenantID string, p Product) (Product, error) {
	defer s.invalidate(ctx, tenantID)
	return s.Store.AddProduct(ctx, tenantID, p)
}

func (s *cachedStore) AddCustomer(ctx context.Context, tenantID string, c Customer) (Customer, error) {
	defer s.invalidate(ctx, tenantID)
	return s.Store.AddCustomer(ctx, tenantID, c)
}

func (s *cachedStore) AddOrder(ctx context.Context, tenantID string, o Order, customerID string) (Order, error) {
	defer s.invalidate(ctx, tenantID)
	return s.Store.AddOrder(ctx, tenantID, o, customerID)
}

func (s *cachedStore) AddFulfillment(ctx context.Context, tenantID, orderID string) error {
	defer s.invalidate(ctx, tenantID)
	return s.Store.AddFulfillment(ctx, tenantID, orderID)
}

func (s *cachedStore) invalidate(ctx context.Context, tenantID string) {
	_ = s.rdb.Del(ctx, statsKey(tenantID)).Err()
}
