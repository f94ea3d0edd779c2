package domain

import "time"

// AssessmentEvent is the record published downstream after an evaluation.
type AssessmentEvent struct {
	Region         string         `json:"region"`
	District       string         `json:"district"`
	Lat            float64        `json:"lat"`
	Lon            float64        `json:"lon"`
	RainfallSource RainfallSource `json:"rainfall_source"`
	FallbackReason FallbackReason `json:"fallback_reason,omitempty"`
	Assessment     RiskAssessment `json:"assessment"`
	EvaluatedAt    time.Time      `json:"evaluated_at"`
}

// Key identifies the district an event belongs to.
func (e AssessmentEvent) Key() string {
	return e.Region + "/" + e.District
}

// NewAssessmentEvent stamps an assessment with the current time.
func NewAssessmentEvent(d District, rainfall RainfallResult, a RiskAssessment) AssessmentEvent {
	return AssessmentEvent{
		Region:         d.Region,
		District:       d.Name,
		Lat:            d.Lat,
		Lon:            d.Lon,
		RainfallSource: rainfall.Source,
		FallbackReason: rainfall.Reason,
		Assessment:     a,
		EvaluatedAt:    clock.Now().UTC(),
	}
}
