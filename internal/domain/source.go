package domain

import (
	"context"
	"errors"
	"fmt"
)

// ObservationSource returns the latest nowcast for a forecast grid cell.
type ObservationSource interface {
	Observe(ctx context.Context, serviceKey string, gridX, gridY int) (WeatherObservation, error)
}

// FallbackReason explains why a caller-supplied default replaced live data.
type FallbackReason string

const (
	ReasonNone        FallbackReason = ""
	ReasonDisabled    FallbackReason = "disabled"
	ReasonMissingKey  FallbackReason = "missing_key"
	ReasonTransport   FallbackReason = "transport"
	ReasonHTTPStatus  FallbackReason = "http_status"
	ReasonResultCode  FallbackReason = "result_code"
	ReasonNoData      FallbackReason = "no_data"
	ReasonMalformed   FallbackReason = "malformed_response"
	ReasonUnavailable FallbackReason = "unavailable"
)

// FetchError is returned by ObservationSource implementations. Code carries
// the HTTP status or provider result code when there is one.
type FetchError struct {
	Reason FallbackReason
	Code   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s): %v", e.Reason, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FallbackReasonOf classifies an error from an ObservationSource.
func FallbackReasonOf(err error) FallbackReason {
	if err == nil {
		return ReasonNone
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReasonTransport
	}
	return ReasonUnavailable
}
