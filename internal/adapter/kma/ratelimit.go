package kma

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// RateLimitedSource wraps an ObservationSource with an outbound rate limit.
type RateLimitedSource struct {
	inner   domain.ObservationSource
	limiter *rate.Limiter
}

// NewRateLimitedSource allows rps requests per second (fractional values
// are fine) with the given burst.
func NewRateLimitedSource(inner domain.ObservationSource, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedSource) Observe(ctx context.Context, serviceKey string, gridX, gridY int) (domain.WeatherObservation, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.WeatherObservation{}, &domain.FetchError{
			Reason: domain.ReasonTransport,
			Err:    fmt.Errorf("rate limit wait canceled: %w", err),
		}
	}
	return r.inner.Observe(ctx, serviceKey, gridX, gridY)
}
