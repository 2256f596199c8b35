package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airroutes/config"
	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	routeTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, routeTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		routeTTL: routeTTL,
	}
}

// GetRoute returns nil, nil on a miss.
func (c *RedisCache) GetRoute(ctx context.Context, dataset, from, to string) (*domain.Route, error) {
	data, err := c.client.Get(ctx, routeKey(dataset, from, to)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var route domain.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (c *RedisCache) SetRoute(ctx context.Context, dataset, from, to string, route domain.Route) error {
	payload, err := json.Marshal(route)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routeKey(dataset, from, to), payload, c.routeTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Keys carry the dataset fingerprint, so instances sharing a cache only
// see answers computed from the same airports and flights.
func routeKey(dataset, from, to string) string {
	return fmt.Sprintf("cache:route:%s:%s:%s", dataset, domain.CanonicalCode(from), domain.CanonicalCode(to))
}
