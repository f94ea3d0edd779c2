package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidDistrict is returned by NewRegistry for entries that break a
// registry invariant.
var ErrInvalidDistrict = errors.New("invalid district")

// District is one administrative district and its forecast grid cell.
type District struct {
	Region        string  `json:"region"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	GridX         int     `json:"grid_x"`
	GridY         int     `json:"grid_y"`
	BaselineDepth float64 `json:"baseline_depth_m"`
}

// Registry is an immutable region -> district lookup built once at startup.
// Regions and districts keep the order in which they were supplied.
type Registry struct {
	regions   []string
	districts map[string][]District
	index     map[string]map[string]int
	total     int
}

// NewRegistry validates districts and builds a Registry. Districts without
// grid indices (both zero) get them derived from their coordinates.
func NewRegistry(districts []District) (*Registry, error) {
	r := &Registry{
		districts: make(map[string][]District),
		index:     make(map[string]map[string]int),
	}

	for _, d := range districts {
		d.Region = strings.TrimSpace(d.Region)
		d.Name = strings.TrimSpace(d.Name)
		if d.GridX == 0 && d.GridY == 0 {
			d.GridX, d.GridY = LatLonToGrid(d.Lat, d.Lon)
		}
		if err := validateDistrict(d); err != nil {
			return nil, err
		}

		names, ok := r.index[d.Region]
		if !ok {
			names = make(map[string]int)
			r.index[d.Region] = names
			r.regions = append(r.regions, d.Region)
		}
		if _, dup := names[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate district %q in region %q", ErrInvalidDistrict, d.Name, d.Region)
		}
		names[d.Name] = len(r.districts[d.Region])
		r.districts[d.Region] = append(r.districts[d.Region], d)
		r.total++
	}

	return r, nil
}

func validateDistrict(d District) error {
	switch {
	case d.Region == "":
		return fmt.Errorf("%w: empty region name for district %q", ErrInvalidDistrict, d.Name)
	case d.Name == "":
		return fmt.Errorf("%w: empty district name in region %q", ErrInvalidDistrict, d.Region)
	case d.Lat < -90 || d.Lat > 90 || d.Lon < -180 || d.Lon > 180:
		return fmt.Errorf("%w: %s %s: coordinates out of range (%g, %g)", ErrInvalidDistrict, d.Region, d.Name, d.Lat, d.Lon)
	case d.Lat == 0 && d.Lon == 0:
		return fmt.Errorf("%w: %s %s: missing coordinates", ErrInvalidDistrict, d.Region, d.Name)
	case d.GridX <= 0 || d.GridY <= 0:
		return fmt.Errorf("%w: %s %s: grid (%d, %d) must be positive", ErrInvalidDistrict, d.Region, d.Name, d.GridX, d.GridY)
	case d.BaselineDepth < 0 || math.IsNaN(d.BaselineDepth):
		return fmt.Errorf("%w: %s %s: negative baseline depth %g", ErrInvalidDistrict, d.Region, d.Name, d.BaselineDepth)
	}
	return nil
}

// Regions returns region names in registry order.
func (r *Registry) Regions() []string {
	out := make([]string, len(r.regions))
	copy(out, r.regions)
	return out
}

// Districts returns the districts of a region in registry order.
func (r *Registry) Districts(region string) ([]District, bool) {
	ds, ok := r.districts[region]
	if !ok {
		return nil, false
	}
	out := make([]District, len(ds))
	copy(out, ds)
	return out, true
}

// Lookup finds a district by region and district name.
func (r *Registry) Lookup(region, name string) (District, bool) {
	i, ok := r.index[region][name]
	if !ok {
		return District{}, false
	}
	return r.districts[region][i], true
}

// All returns every district, region by region, in registry order.
func (r *Registry) All() []District {
	out := make([]District, 0, r.total)
	for _, region := range r.regions {
		out = append(out, r.districts[region]...)
	}
	return out
}

// Len reports the number of districts.
func (r *Registry) Len() int {
	return r.total
}

// Nearest returns the district closest to the given coordinates and the
// great-circle distance to it in kilometers.
func (r *Registry) Nearest(lat, lon float64) (District, float64, bool) {
	var (
		best  District
		bestD = math.Inf(1)
		found bool
	)
	for _, region := range r.regions {
		for _, d := range r.districts[region] {
			if dist := haversineKM(lat, lon, d.Lat, d.Lon); dist < bestD {
				best, bestD, found = d, dist, true
			}
		}
	}
	return best, bestD, found
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := lat2Rad - lat1Rad
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
