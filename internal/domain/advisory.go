package domain

import (
	"fmt"
	"strconv"
)

// Attribution is the data source notice required by the KOGL type 1 licence
// of the public weather data.
const Attribution = "데이터 출처: 기상청_단기예보 (공공데이터포털, https://www.data.go.kr/data/15007722/openapi.do). " +
	"공공누리 \"출처표시\" 조건에 따라 이용. 원본 데이터 제공: 기상청."

// Recommendation is a flood barrier installation option for a risk tier.
type Recommendation struct {
	Tier             string `json:"tier"`
	BarrierType      string `json:"barrier_type"`
	CostPerSqm       string `json:"cost_per_sqm"`
	InstallationTime string `json:"installation_time"`
}

var recommendations = []Recommendation{
	{Tier: "저위험", BarrierType: "기본 알루미늄", CostPerSqm: "5만 원", InstallationTime: "1일"},
	{Tier: "중위험", BarrierType: "스마트 IoT 내장", CostPerSqm: "8만 원", InstallationTime: "1-2일"},
	{Tier: "고위험", BarrierType: "강화 스틸 + 센서", CostPerSqm: "12만 원", InstallationTime: "2일"},
}

// Recommendations returns every installation option, lowest tier first.
func Recommendations() []Recommendation {
	out := make([]Recommendation, len(recommendations))
	copy(out, recommendations)
	return out
}

// RecommendationFor picks the option matching a risk class.
func RecommendationFor(class RiskClass) Recommendation {
	if class == RiskHigh {
		return recommendations[len(recommendations)-1]
	}
	return recommendations[0]
}

// PastFloodCase is one historical heavy-rain event.
type PastFloodCase struct {
	Year                int     `json:"year"`
	RainfallMM          float64 `json:"rainfall_mm"`
	Damage100MillionKRW int     `json:"damage_100m_krw"`
	FloodProbabilityPct int     `json:"flood_probability_pct"`
	Highlight           string  `json:"highlight"`
}

var pastFloodCases = []PastFloodCase{
	{Year: 2025, RainfallMM: 411.9, Damage100MillionKRW: 500, FloodProbabilityPct: 80, Highlight: "광주 최대 기록"},
	{Year: 2024, RainfallMM: 263.4, Damage100MillionKRW: 300, FloodProbabilityPct: 70, Highlight: "서울 중부 호우"},
	{Year: 2023, RainfallMM: 200.5, Damage100MillionKRW: 150, FloodProbabilityPct: 50, Highlight: "전국 평균 초과"},
}

// PastFloodCases returns the historical cases, newest first.
func PastFloodCases() []PastFloodCase {
	out := make([]PastFloodCase, len(pastFloodCases))
	copy(out, pastFloodCases)
	return out
}

// AlertText is the personalized notice shown with an assessment.
func AlertText(rainfallMM float64) string {
	return fmt.Sprintf("현재 강수량: %smm (과거 평균 200mm 초과).\n2025년 중부지방 사례: 500년 빈도 호우로 침수 확률 80%% ↑.",
		strconv.FormatFloat(rainfallMM, 'f', -1, 64))
}
