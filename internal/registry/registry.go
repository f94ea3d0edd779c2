// Package registry loads the district registry from YAML. The default
// registry is embedded in the binary; REGISTRY_FILE replaces it at startup.
package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

//go:embed districts.yaml
var defaultRegistry []byte

type file struct {
	Regions []regionEntry `yaml:"regions"`
}

type regionEntry struct {
	Name      string          `yaml:"name"`
	Districts []districtEntry `yaml:"districts"`
}

type districtEntry struct {
	Name          string  `yaml:"name"`
	Lat           float64 `yaml:"lat"`
	Lon           float64 `yaml:"lon"`
	NX            int     `yaml:"nx"`
	NY            int     `yaml:"ny"`
	BaselineDepth float64 `yaml:"baseline_depth"`
}

// Default returns the embedded registry.
func Default() (*domain.Registry, error) {
	return Parse(defaultRegistry)
}

// DefaultYAML returns a copy of the embedded registry document.
func DefaultYAML() []byte {
	return bytes.Clone(defaultRegistry)
}

// Load reads a registry file. An empty path loads the embedded default.
func Load(path string) (*domain.Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*domain.Registry, error) {
	districts, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return domain.NewRegistry(districts)
}

// Decode flattens a registry document into districts without validating
// them. Unknown keys are rejected so typos do not silently drop data.
func Decode(data []byte) ([]domain.District, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode registry: empty document")
		}
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	var out []domain.District
	for _, r := range f.Regions {
		if len(r.Districts) == 0 {
			return nil, fmt.Errorf("%w: region %q has no districts", domain.ErrInvalidDistrict, r.Name)
		}
		for _, d := range r.Districts {
			out = append(out, domain.District{
				Region:        r.Name,
				Name:          d.Name,
				Lat:           d.Lat,
				Lon:           d.Lon,
				GridX:         d.NX,
				GridY:         d.NY,
				BaselineDepth: d.BaselineDepth,
			})
		}
	}
	return out, nil
}
