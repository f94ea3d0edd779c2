package kma

import (
	"context"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// TimeoutSource bounds a whole Observe call, including rate limit waits and
// the NO_DATA retry, by a single deadline.
type TimeoutSource struct {
	inner   domain.ObservationSource
	timeout time.Duration
}

// NewTimeoutSource wraps inner with an overall deadline of timeout.
func NewTimeoutSource(inner domain.ObservationSource, timeout time.Duration) *TimeoutSource {
	return &TimeoutSource{inner: inner, timeout: timeout}
}

func (t *TimeoutSource) Observe(ctx context.Context, serviceKey string, gridX, gridY int) (domain.WeatherObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Observe(ctx, serviceKey, gridX, gridY)
}
