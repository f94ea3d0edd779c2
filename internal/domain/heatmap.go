package domain

// HeatWeightScale converts a baseline flood depth (m) into a heat weight.
const HeatWeightScale = 10.0

// HeatmapPoint is one weighted map point, derived per district.
type HeatmapPoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight float64 `json:"weight"`
}

// BuildHeatPoints emits one point per district in registry order. Districts
// with a zero baseline still produce a zero-weight point.
func BuildHeatPoints(reg *Registry) []HeatmapPoint {
	return heatPoints(reg.All())
}

// BuildRegionHeatPoints is BuildHeatPoints restricted to one region.
func BuildRegionHeatPoints(reg *Registry, region string) ([]HeatmapPoint, bool) {
	ds, ok := reg.Districts(region)
	if !ok {
		return nil, false
	}
	return heatPoints(ds), true
}

func heatPoints(ds []District) []HeatmapPoint {
	points := make([]HeatmapPoint, 0, len(ds))
	for _, d := range ds {
		points = append(points, HeatmapPoint{
			Lat:    d.Lat,
			Lon:    d.Lon,
			Weight: d.BaselineDepth * HeatWeightScale,
		})
	}
	return points
}
