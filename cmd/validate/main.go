// Command validate checks a district registry document before it is deployed:
// it decodes the YAML strictly, verifies every district's fields, looks for
// duplicates, and confirms that stored forecast grid indices agree with the
// Lambert conformal conversion of the district's coordinates.
//
// Usage:
//
//	go run ./cmd/validate -registry internal/registry/districts.yaml
//	go run ./cmd/validate            # validates the embedded registry
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/registry"
)

// maxBaselineDepth is the deepest plausible standing-water baseline in metres.
const maxBaselineDepth = 5.0

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("registry", "", "path to a registry YAML file (default: embedded registry)")
	flag.Parse()

	os.Exit(run(os.Stdout, *path))
}

func run(out io.Writer, path string) int {
	fmt.Fprintln(out, "=== District Registry Validation ===")
	fmt.Fprintln(out)

	data := registry.DefaultYAML()
	source := "embedded"
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "FATAL: read registry: %v\n", err)
			return 1
		}
		source = path
	}

	districts, err := registry.Decode(data)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateFields(districts),
		validateUniqueness(districts),
		validateGrid(districts),
		validateBaseline(districts),
		validateConstruction(districts),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Registry: %s, %d regions, %d districts\n", source, countRegions(districts), len(districts))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func countRegions(districts []domain.District) int {
	seen := make(map[string]bool)
	for _, d := range districts {
		seen[d.Region] = true
	}
	return len(seen)
}

func label(d domain.District) string {
	return d.Region + " " + d.Name
}

// ── Phases ──

func validateFields(districts []domain.District) *phase {
	p := &phase{name: "Required fields and coordinate ranges"}
	for i, d := range districts {
		if d.Region == "" {
			p.errorf("entry %d (%q): empty region name", i, d.Name)
		}
		if d.Name == "" {
			p.errorf("entry %d in %q: empty district name", i, d.Region)
		}
		if d.Lat == 0 && d.Lon == 0 {
			p.errorf("%s: missing coordinates", label(d))
			continue
		}
		if d.Lat < -90 || d.Lat > 90 || d.Lon < -180 || d.Lon > 180 {
			p.errorf("%s: coordinates out of range (%g, %g)", label(d), d.Lat, d.Lon)
		}
	}
	return p
}

func validateUniqueness(districts []domain.District) *phase {
	p := &phase{name: "Unique district names per region"}
	seen := make(map[string]int)
	for i, d := range districts {
		key := label(d)
		if first, ok := seen[key]; ok {
			p.errorf("%s: duplicate of entry %d at entry %d", key, first, i)
			continue
		}
		seen[key] = i
	}
	return p
}

func validateGrid(districts []domain.District) *phase {
	p := &phase{name: "Grid indices match coordinates"}
	for _, d := range districts {
		if d.GridX == 0 && d.GridY == 0 {
			continue
		}
		nx, ny := domain.LatLonToGrid(d.Lat, d.Lon)
		if nx != d.GridX || ny != d.GridY {
			p.errorf("%s: stored grid (%d, %d), coordinates give (%d, %d)", label(d), d.GridX, d.GridY, nx, ny)
		}
	}
	return p
}

func validateBaseline(districts []domain.District) *phase {
	p := &phase{name: "Baseline depth plausible"}
	for _, d := range districts {
		if math.IsNaN(d.BaselineDepth) || d.BaselineDepth < 0 || d.BaselineDepth > maxBaselineDepth {
			p.errorf("%s: baseline depth %g outside [0, %g] m", label(d), d.BaselineDepth, maxBaselineDepth)
		}
	}
	return p
}

func validateConstruction(districts []domain.District) *phase {
	p := &phase{name: "Registry builds"}
	reg, err := domain.NewRegistry(districts)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if reg.Len() != len(districts) {
		p.errorf("registry holds %d districts, document lists %d", reg.Len(), len(districts))
	}
	return p
}
