package domain

import "math"

// KMA 5 km Lambert conformal conic grid parameters.
const (
	gridEarthRadiusKM = 6371.00877
	gridSpacingKM     = 5.0
	gridStdParallel1  = 30.0
	gridStdParallel2  = 60.0
	gridOriginLon     = 126.0
	gridOriginLat     = 38.0
	gridOriginX       = 43
	gridOriginY       = 136
)

// LatLonToGrid converts WGS-84 coordinates to KMA forecast grid indices.
func LatLonToGrid(lat, lon float64) (int, int) {
	const degToRad = math.Pi / 180.0

	re := gridEarthRadiusKM / gridSpacingKM
	slat1 := gridStdParallel1 * degToRad
	slat2 := gridStdParallel2 * degToRad
	olon := gridOriginLon * degToRad
	olat := gridOriginLat * degToRad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn
	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + lat*degToRad*0.5)
	ra = re * sf / math.Pow(ra, sn)
	theta := lon*degToRad - olon
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= sn

	x := ra*math.Sin(theta) + gridOriginX
	y := ro - ra*math.Cos(theta) + gridOriginY
	return int(math.Floor(x + 0.5)), int(math.Floor(y + 0.5))
}
