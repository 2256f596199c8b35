package cache

import (
	"context"
	"time"

	"github.com/Domenick1991/airroutes/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry struct {
	route     domain.Route
	expiresAt time.Time
}

// MemoryCache is an in-process LRU route cache with a fixed TTL per entry.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(size int, ttl time.Duration) (*MemoryCache, error) {
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, ttl: ttl, now: time.Now}, nil
}

func (c *MemoryCache) GetRoute(_ context.Context, dataset, from, to string) (*domain.Route, error) {
	key := routeKey(dataset, from, to)
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, nil
	}
	if c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		return nil, nil
	}
	route := e.route
	route.Connections = append([]string(nil), e.route.Connections...)
	return &route, nil
}

func (c *MemoryCache) SetRoute(_ context.Context, dataset, from, to string, route domain.Route) error {
	route.Connections = append([]string(nil), route.Connections...)
	c.entries.Add(routeKey(dataset, from, to), memoryEntry{route: route, expiresAt: c.now().Add(c.ttl)})
	return nil
}

func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
