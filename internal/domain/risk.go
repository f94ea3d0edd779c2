package domain

// HighRiskThreshold is the score above which a site is classified high risk.
const HighRiskThreshold = 20.0

const (
	rainfallWeight = 10.0
	depthWeight    = 20.0
)

// RiskClass is the binary classification of a RiskAssessment.
type RiskClass string

const (
	RiskLow  RiskClass = "low"
	RiskHigh RiskClass = "high"
)

// RiskAssessment is the result of scoring one site. It is recomputed on
// every evaluation and never cached.
type RiskAssessment struct {
	RainfallMM  float64   `json:"rainfall_mm"`
	ElevationM  float64   `json:"elevation_m"`
	FloodDepthM float64   `json:"flood_depth_m"`
	RiskScore   float64   `json:"risk_score"`
	IsHighRisk  bool      `json:"is_high_risk"`
	Class       RiskClass `json:"class"`
}

// Score combines rainfall, elevation and flood depth into a risk score.
// Elevation is offset by one so the denominator is at least 1 for any
// non-negative elevation. Inputs are not range-checked; negative values pass
// straight through the arithmetic.
func Score(rainfallMM, elevationM, floodDepthM float64) (float64, bool) {
	score := (rainfallMM/(elevationM+1))*rainfallWeight + floodDepthM*depthWeight
	return score, score > HighRiskThreshold
}

// Assess scores a site and packages inputs and result together.
func Assess(rainfallMM, elevationM, floodDepthM float64) RiskAssessment {
	score, high := Score(rainfallMM, elevationM, floodDepthM)
	class := RiskLow
	if high {
		class = RiskHigh
	}
	return RiskAssessment{
		RainfallMM:  rainfallMM,
		ElevationM:  elevationM,
		FloodDepthM: floodDepthM,
		RiskScore:   score,
		IsHighRisk:  high,
		Class:       class,
	}
}
