package domain

import (
	"math"
	"math/rand/v2"
	"sync"
)

// maxSimulatedRise is the upper bound of the uniform draw added to a
// district's baseline depth.
const maxSimulatedRise = 2.0

// DepthSimulator draws synthetic flood depths. It is safe for concurrent use.
type DepthSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDepthSimulator creates a simulator over the given random source. Pass
// nil to use a randomly seeded source.
func NewDepthSimulator(src rand.Source) *DepthSimulator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &DepthSimulator{rng: rand.New(src)}
}

// NewSeededDepthSimulator creates a reproducible simulator.
func NewSeededDepthSimulator(seed uint64) *DepthSimulator {
	return NewDepthSimulator(rand.NewPCG(seed, seed))
}

// Simulate returns baseline + U(0, 2) rounded to one decimal place. The
// result never leaves [baseline, baseline+2], even for baselines that are
// not on the 0.1 grid.
func (s *DepthSimulator) Simulate(baseline float64) float64 {
	s.mu.Lock()
	u := s.rng.Float64() * maxSimulatedRise
	s.mu.Unlock()
	return min(max(roundTo1(baseline+u), baseline), baseline+maxSimulatedRise)
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
