package kma

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// CachedSource wraps an ObservationSource with an in-memory TTL cache keyed
// by grid cell.
type CachedSource struct {
	inner   domain.ObservationSource
	cache   *cache.Cache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a source.
func NewCachedSource(inner domain.ObservationSource, ttl time.Duration, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   cache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedSource) Observe(ctx context.Context, serviceKey string, gridX, gridY int) (domain.WeatherObservation, error) {
	key := fmt.Sprintf("obs:%d,%d", gridX, gridY)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return v.(domain.WeatherObservation), nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	obs, err := c.inner.Observe(ctx, serviceKey, gridX, gridY)
	if err != nil {
		// Failures are not cached so the next request tries again.
		return obs, err
	}
	c.cache.Set(key, obs, cache.DefaultExpiration)
	return obs, nil
}

// Flush drops every cached observation.
func (c *CachedSource) Flush() {
	c.cache.Flush()
}
