package domain

import (
	"context"
	"log/slog"
)

// Settings are the per-call toggles and credential for live data.
type Settings struct {
	ServiceKey             string
	WeatherEnabled         bool
	FloodSimulationEnabled bool
}

// RainfallSource tells whether a rainfall figure came from the provider.
type RainfallSource string

const (
	SourceLive     RainfallSource = "live"
	SourceFallback RainfallSource = "fallback"
)

// RainfallResult is the outcome of FetchRainfall: the value to use, where
// it came from, and why live data was not used when it was not.
type RainfallResult struct {
	RainfallMM  float64             `json:"rainfall_mm"`
	Source      RainfallSource      `json:"source"`
	Reason      FallbackReason      `json:"fallback_reason,omitempty"`
	Observation *WeatherObservation `json:"observation,omitempty"`
}

// Live reports whether the provider value was used.
func (r RainfallResult) Live() bool {
	return r.Source == SourceLive
}

// FetchRainfall asks the source for the latest rainfall at a grid cell and
// falls back to the caller's default on any failure. It never returns an
// error; the fallback reason is recorded on the result instead.
func FetchRainfall(ctx context.Context, source ObservationSource, settings Settings, gridX, gridY int, fallback float64, logger *slog.Logger) RainfallResult {
	if source == nil || !settings.WeatherEnabled {
		return fallbackResult(fallback, ReasonDisabled)
	}
	if settings.ServiceKey == "" {
		logger.Warn("weather fetch skipped: no service key", "grid_x", gridX, "grid_y", gridY)
		return fallbackResult(fallback, ReasonMissingKey)
	}

	obs, err := source.Observe(ctx, settings.ServiceKey, gridX, gridY)
	if err != nil {
		reason := FallbackReasonOf(err)
		logger.Warn("weather fetch failed, using fallback rainfall",
			"grid_x", gridX,
			"grid_y", gridY,
			"reason", reason,
			"fallback_mm", fallback,
			"error", err,
		)
		return fallbackResult(fallback, reason)
	}

	logger.Debug("weather fetch succeeded",
		"grid_x", gridX,
		"grid_y", gridY,
		"base_date", obs.BaseDate,
		"base_time", obs.BaseTime,
		"pty", obs.PrecipitationType,
		"rainfall_mm", obs.OneHourRainfallMM,
	)
	return RainfallResult{
		RainfallMM:  obs.OneHourRainfallMM,
		Source:      SourceLive,
		Observation: &obs,
	}
}

func fallbackResult(fallback float64, reason FallbackReason) RainfallResult {
	return RainfallResult{
		RainfallMM: fallback,
		Source:     SourceFallback,
		Reason:     reason,
	}
}
