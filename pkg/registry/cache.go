package registry

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/AryaKesharwani/erp-next-contract/pkg/models"
	"github.com/AryaKesharwani/erp-next-contract/pkg/tracing"
)

// Cached decorates a Provider with a time-bounded snapshot cache so each
// document does not trigger a registry refetch.
type Cached struct {
	inner  Provider
	ttl    time.Duration
	logger ectologger.Logger

	mu        sync.Mutex
	snapshot  []models.Client
	fetchedAt time.Time

	now func() time.Time
}

// NewCached wraps a provider with a snapshot cache.
func NewCached(inner Provider, ttl time.Duration, logger ectologger.Logger) *Cached {
	return &Cached{
		inner:  inner,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Clients returns the cached snapshot, refreshing it when the TTL has
// elapsed. A failed refresh does not evict a previously cached snapshot.
func (c *Cached) Clients(ctx context.Context) ([]models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "registry.Cached.Clients")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.snapshot, nil
	}

	clients, err := c.inner.Clients(ctx)
	if err != nil {
		if c.snapshot != nil {
			c.logger.WithContext(ctx).WithError(err).Warn("Registry refresh failed, serving stale snapshot")
			return c.snapshot, nil
		}
		return nil, err
	}

	c.snapshot = clients
	c.fetchedAt = c.now()

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"clients": len(clients),
		"ttl":     c.ttl.String(),
	}).Debug("Refreshed registry snapshot")

	return c.snapshot, nil
}

// Invalidate drops the cached snapshot, forcing a refetch on the next call.
// Called after a new client record is created so it is visible immediately.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
}
