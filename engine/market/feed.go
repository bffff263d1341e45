package market

import (
	"math/rand"
	"sync"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

// DataSource supplies market-rate observations for open opportunities. It is
// the single seam isolating randomness: the simulated source models market
// drift with a bounded random walk, a production implementation ingests a
// real rate feed, and tests supply fixed sequences.
type DataSource interface {
	// ObserveRate returns the next observed market rate for an opportunity.
	ObserveRate(o domain.LoadOpportunity) float64
	// ObserveCompetitors returns the current competitor-rate summary.
	ObserveCompetitors(o domain.LoadOpportunity) domain.CompetitorRates
}

// SimOptions bounds the simulated drift.
type SimOptions struct {
	// MaxDriftPct is the largest per-tick market-rate move, in percent.
	MaxDriftPct float64
	// Spread is the competitor min/max band around the average, in percent.
	Spread float64
}

// DefaultSimOptions keeps drift within ±3% per tick with a 10% spread.
var DefaultSimOptions = SimOptions{MaxDriftPct: 3, Spread: 10}

// SimSource is a seeded random-walk market simulation.
type SimSource struct {
	mu   sync.Mutex
	rng  *rand.Rand
	opts SimOptions
}

// NewSimSource creates a simulated market feed. A fixed seed gives a
// reproducible walk.
func NewSimSource(seed int64, opts SimOptions) *SimSource {
	if opts.MaxDriftPct <= 0 {
		opts.MaxDriftPct = DefaultSimOptions.MaxDriftPct
	}
	if opts.Spread <= 0 {
		opts.Spread = DefaultSimOptions.Spread
	}
	return &SimSource{rng: rand.New(rand.NewSource(seed)), opts: opts}
}

func (s *SimSource) ObserveRate(o domain.LoadOpportunity) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	drift := (s.rng.Float64()*2 - 1) * s.opts.MaxDriftPct / 100
	return o.MarketRate * (1 + drift)
}

func (s *SimSource) ObserveCompetitors(o domain.LoadOpportunity) domain.CompetitorRates {
	s.mu.Lock()
	defer s.mu.Unlock()
	avg := o.MarketRate
	band := avg * s.opts.Spread / 100
	demand := domain.DemandMedium
	switch {
	case o.Urgency.TimeCritical():
		demand = domain.DemandHigh
	case o.Urgency == domain.UrgencyStandard && s.rng.Float64() < 0.3:
		demand = domain.DemandLow
	}
	return domain.CompetitorRates{
		AverageRate: avg,
		LowestRate:  avg - band,
		HighestRate: avg + band,
		Demand:      demand,
	}
}

// FixedSource replays a constant observation; ticks against it are
// idempotent, which is what the monitor tests rely on.
type FixedSource struct {
	Rate        func(o domain.LoadOpportunity) float64
	Competitors func(o domain.LoadOpportunity) domain.CompetitorRates
}

func (f FixedSource) ObserveRate(o domain.LoadOpportunity) float64 {
	if f.Rate == nil {
		return o.MarketRate
	}
	return f.Rate(o)
}

func (f FixedSource) ObserveCompetitors(o domain.LoadOpportunity) domain.CompetitorRates {
	if f.Competitors == nil {
		return o.Competitors
	}
	return f.Competitors(o)
}
