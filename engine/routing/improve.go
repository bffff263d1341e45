package routing

import (
	"math/rand"
	"sync"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

// ImprovementSource yields the fraction of route miles an optimization
// removes for a load. The default source draws from a bounded random range
// standing in for a real route solver; tests pin a fixed factor. Either
// way the factor is the only non-input the route synthesis consumes.
type ImprovementSource interface {
	Factor(o domain.LoadOpportunity) float64
}

// Default improvement bounds: 5–15% of route miles removed.
const (
	DefaultMinImprovement = 0.05
	DefaultMaxImprovement = 0.15
)

// RandImprovement draws a factor uniformly from [Min, Max) with a seeded
// generator.
type RandImprovement struct {
	mu  sync.Mutex
	rng *rand.Rand
	min float64
	max float64
}

// NewRandImprovement creates the default bounded random source. Zero bounds
// fall back to the 5–15% defaults.
func NewRandImprovement(seed int64, min, max float64) *RandImprovement {
	if min <= 0 {
		min = DefaultMinImprovement
	}
	if max <= min {
		max = DefaultMaxImprovement
	}
	return &RandImprovement{rng: rand.New(rand.NewSource(seed)), min: min, max: max}
}

func (r *RandImprovement) Factor(domain.LoadOpportunity) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.min + r.rng.Float64()*(r.max-r.min)
}

// FixedImprovement always returns F; the deterministic test source.
type FixedImprovement struct{ F float64 }

func (f FixedImprovement) Factor(domain.LoadOpportunity) float64 { return f.F }
