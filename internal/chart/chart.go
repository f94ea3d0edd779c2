// Package chart builds renderer-neutral chart descriptions. Each Chart is
// plain data (axes, series, reference lines) serialized as JSON; drawing it
// is left to the client.
package chart

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// Series kinds.
const (
	KindLine    = "line"
	KindScatter = "scatter"
)

// Reference line axes.
const (
	AxisX = "x"
	AxisY = "y"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Series struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Points []Point `json:"points"`
}

// ReferenceLine is a straight line across the plot at Value on Axis.
type ReferenceLine struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

type Chart struct {
	Title      string          `json:"title"`
	XLabel     string          `json:"x_label"`
	YLabel     string          `json:"y_label"`
	Series     []Series        `json:"series"`
	References []ReferenceLine `json:"references,omitempty"`
}

const (
	probabilitySamples  = 100
	probabilityMaxMM    = 500.0
	probabilityScaleMM  = 200.0
	trendThresholdMM    = 200.0
	simulationSeed      = 42
	simulationSize      = 50
	simulationHighShare = 0.3
)

// FloodProbability is the exponential rainfall-to-flood model, in percent.
func FloodProbability(rainfallMM float64) float64 {
	return (1 - math.Exp(-rainfallMM/probabilityScaleMM)) * 100
}

// RainfallProbability plots FloodProbability over 0..500 mm with a marker
// line at the current rainfall.
func RainfallProbability(currentMM float64) Chart {
	points := make([]Point, probabilitySamples)
	step := probabilityMaxMM / (probabilitySamples - 1)
	for i := range points {
		x := float64(i) * step
		points[i] = Point{X: x, Y: FloodProbability(x)}
	}
	points[probabilitySamples-1].X = probabilityMaxMM

	return Chart{
		Title:  "강수량 vs 침수 확률 (2025년 사례 포함)",
		XLabel: "강수량 (mm)",
		YLabel: "침수 확률 (%)",
		Series: []Series{{Name: "침수 확률", Kind: KindLine, Points: points}},
		References: []ReferenceLine{{
			Axis:  AxisX,
			Value: currentMM,
			Label: fmt.Sprintf("현재 강수량: %smm", strconv.FormatFloat(currentMM, 'f', -1, 64)),
		}},
	}
}

var trendYears = []struct {
	year      int
	avgRainMM float64
}{
	{2021, 180},
	{2022, 200},
	{2023, 220},
	{2024, 250},
	{2025, 300},
}

// RainfallTrend plots yearly average rainfall against the flood threshold.
func RainfallTrend() Chart {
	points := make([]Point, len(trendYears))
	for i, y := range trendYears {
		points[i] = Point{X: float64(y.year), Y: y.avgRainMM}
	}
	return Chart{
		Title:  "연간 강수량 추세 (기후변화로 증가 – 침수 빈도 ↑)",
		XLabel: "년도",
		YLabel: "평균 강수량 (mm)",
		Series: []Series{{Name: "평균 강수량", Kind: KindLine, Points: points}},
		References: []ReferenceLine{{
			Axis:  AxisY,
			Value: trendThresholdMM,
			Label: "침수 임계값 (200mm)",
		}},
	}
}

// SimulationSample is one synthetic site of the risk scatter.
type SimulationSample struct {
	RainfallMM float64 `json:"rainfall_mm"`
	ElevationM float64 `json:"elevation_m"`
	// Risk is a random label with P(1) = 0.3, independent of the inputs.
	Risk int `json:"risk"`
	// FormulaHighRisk applies the scoring formula without flood depth.
	FormulaHighRisk bool `json:"sim_risk"`
}

// SimulateSamples draws n synthetic sites from a seeded source: all
// rainfall values first, then elevations, then labels.
func SimulateSamples(seed uint64, n int) []SimulationSample {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]SimulationSample, n)
	for i := range out {
		out[i].RainfallMM = 50 + rng.Float64()*150
	}
	for i := range out {
		out[i].ElevationM = rng.Float64() * 50
	}
	for i := range out {
		if rng.Float64() < simulationHighShare {
			out[i].Risk = 1
		}
		_, out[i].FormulaHighRisk = domain.Score(out[i].RainfallMM, out[i].ElevationM, 0)
	}
	return out
}

// RiskSimulation scatters the fixed-seed sample, one series per risk label.
func RiskSimulation() Chart {
	samples := SimulateSamples(simulationSeed, simulationSize)
	low := Series{Name: "예측 위험도 0: 저위험", Kind: KindScatter, Points: []Point{}}
	high := Series{Name: "예측 위험도 1: 고위험", Kind: KindScatter, Points: []Point{}}
	for _, s := range samples {
		p := Point{X: s.RainfallMM, Y: s.ElevationM}
		if s.Risk == 1 {
			high.Points = append(high.Points, p)
		} else {
			low.Points = append(low.Points, p)
		}
	}
	return Chart{
		Title:  "침수 위험 예측 시각화 (GIS 히트맵 시뮬레이션)",
		XLabel: "강수량 (mm)",
		YLabel: "고도 (m)",
		Series: []Series{low, high},
	}
}
