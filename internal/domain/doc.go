// Package domain models flood-risk estimation for Korean administrative
// districts.
//
// # Data Source
//
// Live rainfall comes from the Korea Meteorological Administration (KMA)
// short-term forecast service published on the public data portal
// (https://www.data.go.kr/data/15007722/openapi.do), endpoint
// getUltraSrtNcst (ultra short-term nowcast). Redistribution must show the
// source and the KOGL "attribution" licence notice, see [Attribution].
//
// # KMA Data Conventions
//
// Grid:
//
//	Observations are addressed by a 5 km Lambert conformal conic grid
//	(nx, ny). [LatLonToGrid] converts WGS-84 coordinates to grid indices
//	using the KMA reference parameters (standard parallels 30N/60N,
//	origin 38N 126E at grid cell 43,136).
//
// Base time:
//
//	Requests name a base date (YYYYMMDD) and one of eight base times
//	0200 0500 0800 1100 1400 1700 2000 2300, in Korea Standard Time.
//	[LatestBaseSlot] picks the latest label not after the current hour;
//	before 02:00 it wraps to 2300 of the previous day.
//
// Categories:
//
//	PTY  precipitation type: 0 none, 1 rain, 2 rain/snow, 3 snow,
//	     5 drizzle, 6 drizzle/snow flurries, 7 snow flurries.
//	RN1  one-hour accumulated rainfall in mm.
//
// Missing values:
//
//	-999, -998 and -998.9 are provider sentinels for "not observed".
//	They, empty strings, absent categories and non-numeric values all
//	normalize to 0. A PTY of 0 forces rainfall to 0 regardless of RN1.
//
// # Risk Model
//
// The score is a linear heuristic, not a hydrological model:
//
//	score = rainfall / (elevation + 1) * 10 + flood_depth * 20
//	high risk when score > 20
//
// Flood depth is simulated as baseline + U(0, 2) rounded to one decimal.
package domain
