package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Observation categories requested from the nowcast service.
const (
	CategoryPrecipitationType = "PTY"
	CategoryOneHourRainfall   = "RN1"
)

// PrecipitationType is the KMA PTY code.
type PrecipitationType int

const (
	PrecipitationNone         PrecipitationType = 0
	PrecipitationRain         PrecipitationType = 1
	PrecipitationRainSnow     PrecipitationType = 2
	PrecipitationSnow         PrecipitationType = 3
	PrecipitationDrizzle      PrecipitationType = 5
	PrecipitationDrizzleSnow  PrecipitationType = 6
	PrecipitationSnowFlurries PrecipitationType = 7
)

func (p PrecipitationType) String() string {
	switch p {
	case PrecipitationNone:
		return "none"
	case PrecipitationRain:
		return "rain"
	case PrecipitationRainSnow:
		return "rain_snow"
	case PrecipitationSnow:
		return "snow"
	case PrecipitationDrizzle:
		return "drizzle"
	case PrecipitationDrizzleSnow:
		return "drizzle_snow"
	case PrecipitationSnowFlurries:
		return "snow_flurries"
	default:
		return "unknown"
	}
}

// MarshalText renders the code as its name in JSON payloads.
func (p PrecipitationType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ObservationItem is one category/value pair from a provider response.
type ObservationItem struct {
	Category string
	Value    string
}

// WeatherObservation is the normalized nowcast for one grid cell.
type WeatherObservation struct {
	PrecipitationType PrecipitationType `json:"precipitation_type"`
	OneHourRainfallMM float64           `json:"one_hour_rainfall_mm"`
	ObservedAt        time.Time         `json:"observed_at"`
	BaseDate          string            `json:"base_date"`
	BaseTime          string            `json:"base_time"`
	GridX             int               `json:"grid_x"`
	GridY             int               `json:"grid_y"`
}

// NewObservation builds a WeatherObservation from raw provider items.
// Unknown categories are ignored; when a category repeats the last value wins.
func NewObservation(items []ObservationItem, slot BaseSlot, gridX, gridY int) WeatherObservation {
	var ptyRaw, rn1Raw string
	for _, it := range items {
		switch strings.TrimSpace(it.Category) {
		case CategoryPrecipitationType:
			ptyRaw = it.Value
		case CategoryOneHourRainfall:
			rn1Raw = it.Value
		}
	}

	pty := PrecipitationType(int(normalizeObservationValue(ptyRaw)))
	rainfall := normalizeObservationValue(rn1Raw)
	if pty == PrecipitationNone {
		rainfall = 0.0
	}

	return WeatherObservation{
		PrecipitationType: pty,
		OneHourRainfallMM: rainfall,
		ObservedAt:        slot.At,
		BaseDate:          slot.BaseDate(),
		BaseTime:          slot.BaseTime(),
		GridX:             gridX,
		GridY:             gridY,
	}
}

// normalizeObservationValue parses a provider value, mapping the missing
// value sentinels (-999, -998, -998.9), blanks, non-numeric text and any
// other negative number to 0.
func normalizeObservationValue(raw string) float64 {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-999", "-998", "-998.9":
		return 0
	}
	raw = strings.TrimSuffix(raw, "mm")
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
