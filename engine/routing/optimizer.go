package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haulcore/dispatch-engine/engine/catalog"
	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/engine/market"
	"github.com/haulcore/dispatch-engine/pkg/fn"
	"github.com/haulcore/dispatch-engine/pkg/metrics"
)

// Options tunes route synthesis. All heuristic constants live here rather
// than inline so deployments can adjust policy without code changes.
type Options struct {
	FuelPricePerGallon float64
	MilesPerGallon     float64
	BaseSpeedMPH       float64
	OptimizedSpeedMPH  float64
	AdvisorTimeout     time.Duration
	FleetWorkers       int
	// DriverSatisfactionPct is the fixed satisfaction estimate reported in
	// aggregate metrics.
	DriverSatisfactionPct float64
	// RevenueFactor converts fuel savings into the revenue-increase
	// estimate.
	RevenueFactor float64
}

// DefaultOptions returns the standard synthesis parameters.
func DefaultOptions() Options {
	return Options{
		FuelPricePerGallon:    4.10,
		MilesPerGallon:        6.5,
		BaseSpeedMPH:          47,
		OptimizedSpeedMPH:     52,
		AdvisorTimeout:        2 * time.Second,
		FleetWorkers:          4,
		DriverSatisfactionPct: 85,
		RevenueFactor:         1.8,
	}
}

// withDefaults fills every unset field so partially populated Options cannot
// produce zero divisors in route synthesis.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.FuelPricePerGallon <= 0 {
		o.FuelPricePerGallon = def.FuelPricePerGallon
	}
	if o.MilesPerGallon <= 0 {
		o.MilesPerGallon = def.MilesPerGallon
	}
	if o.BaseSpeedMPH <= 0 {
		o.BaseSpeedMPH = def.BaseSpeedMPH
	}
	if o.OptimizedSpeedMPH <= 0 {
		o.OptimizedSpeedMPH = def.OptimizedSpeedMPH
	}
	if o.AdvisorTimeout <= 0 {
		o.AdvisorTimeout = def.AdvisorTimeout
	}
	if o.FleetWorkers <= 0 {
		o.FleetWorkers = def.FleetWorkers
	}
	if o.DriverSatisfactionPct <= 0 {
		o.DriverSatisfactionPct = def.DriverSatisfactionPct
	}
	if o.RevenueFactor <= 0 {
		o.RevenueFactor = def.RevenueFactor
	}
	return o
}

// implementationPlan is the fixed rollout sequence attached to every record.
var implementationPlan = []string{
	"Confirm driver status and hours-of-service headroom",
	"Coordinate pickup sequence with shippers and receivers",
	"Push the updated route plan to the vehicle",
	"Monitor weather, traffic, and equipment for re-optimization triggers",
}

// Optimizer builds OptimizationRecords. It reads the opportunity store and
// never mutates it; each record is an independent append-only result, so
// cancellation cannot leave shared state half-updated.
type Optimizer struct {
	catalog   *catalog.Catalog
	store     *market.Store
	advisor   Advisor
	improve   ImprovementSource
	opts      Options
	logger    *slog.Logger
	runs      *metrics.Counter
	fallbacks *metrics.Counter
}

// NewOptimizer creates a route optimizer.
func NewOptimizer(cat *catalog.Catalog, store *market.Store, advisor Advisor, improve ImprovementSource, opts Options, logger *slog.Logger, reg *metrics.Registry) *Optimizer {
	if logger == nil {
		logger = slog.Default()
	}
	if improve == nil {
		improve = NewRandImprovement(time.Now().UnixNano(), 0, 0)
	}
	opts = opts.withDefaults()
	if reg == nil {
		reg = metrics.New()
	}
	return &Optimizer{
		catalog:   cat,
		store:     store,
		advisor:   advisor,
		improve:   improve,
		opts:      opts,
		logger:    logger,
		runs:      reg.Counter("route_optimizations_total", "Completed optimization requests."),
		fallbacks: reg.Counter("advisory_fallbacks_total", "Optimizations that used the fallback narrative."),
	}
}

// narrative obtains the advisory narrative, substituting the deterministic
// fallback on any error or timeout. Advisory failure is absorbed here and
// never surfaces to the caller.
func (p *Optimizer) narrative(ctx context.Context, loads []domain.LoadOpportunity, vehicleID string) Narrative {
	if p.advisor == nil || len(loads) == 0 {
		return FallbackNarrative()
	}
	adviseCtx, cancel := context.WithTimeout(ctx, p.opts.AdvisorTimeout)
	defer cancel()
	n, err := p.advisor.Advise(adviseCtx, loads, vehicleID)
	if err != nil {
		p.fallbacks.Inc()
		p.logger.Warn("advisory unavailable, using fallback narrative", "vehicle_id", vehicleID, "err", err)
		return FallbackNarrative()
	}
	return n
}

// OptimizeMultiLoad sequences a set of loads assigned to one vehicle and
// reports the savings against naive per-load routing. An empty load set is
// valid and returns a zero-savings record.
func (p *Optimizer) OptimizeMultiLoad(ctx context.Context, loads []domain.LoadOpportunity, vehicleID string) (*OptimizationRecord, error) {
	rec := &OptimizationRecord{
		ID:             uuid.NewString(),
		Kind:           KindMultiLoad,
		VehicleIDs:     []string{vehicleID},
		LoadsOptimized: []LoadRoute{},
		Narrative:      p.narrative(ctx, loads, vehicleID),
		Plan:           implementationPlan,
		CreatedAt:      time.Now().UTC(),
	}

	for _, load := range loads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lr := p.optimizeLoad(load)
		rec.LoadsOptimized = append(rec.LoadsOptimized, lr)
		if load.Requirements != nil {
			rec.Triggers.Equipment = true
		}
	}
	rec.Triggers.Weather = true
	rec.Triggers.Traffic = true
	rec.Triggers.DriverAvailability = len(loads) > 1

	rec.Metrics = p.aggregate(rec.LoadsOptimized)
	p.runs.Inc()
	p.logger.Info("multi-load optimization complete",
		"vehicle_id", vehicleID,
		"loads", len(loads),
		"miles_saved", rec.Metrics.TotalMilesSaved,
	)
	return rec, nil
}

// optimizeLoad synthesizes the naive and improved routes for one load.
func (p *Optimizer) optimizeLoad(load domain.LoadOpportunity) LoadRoute {
	original := p.naiveRoute(load)

	factor := p.improve.Factor(load)
	if factor < 0 {
		factor = 0
	}
	if factor > 0.5 {
		factor = 0.5
	}

	optimized := original
	optimized.TotalMiles = original.TotalMiles * (1 - factor)
	optimized.Duration = time.Duration(optimized.TotalMiles / p.opts.OptimizedSpeedMPH * float64(time.Hour))
	optimized.FuelCost = p.fuelCost(optimized.TotalMiles)

	return LoadRoute{
		LoadID:    load.ID,
		Original:  original,
		Optimized: optimized,
		Savings: Savings{
			FuelCost:      original.FuelCost - optimized.FuelCost,
			Time:          original.Duration - optimized.Duration,
			DeadheadMiles: original.TotalMiles - optimized.TotalMiles,
			MilesPct:      factor * 100,
		},
	}
}

// naiveRoute is the point-to-point baseline a load would run unoptimized.
func (p *Optimizer) naiveRoute(load domain.LoadOpportunity) RouteData {
	constraints := RouteConstraints{HoursOfService: load.Mileage > 500}
	for _, req := range load.Requirements {
		switch req {
		case "hazmat":
			constraints.Hazmat = true
		case "temperature_control":
			constraints.TemperatureControl = true
		case "no_truck_route":
			constraints.TruckRestrictions = true
		}
	}
	return RouteData{
		Origin:      load.Origin,
		Destination: load.Destination,
		Waypoints: []Waypoint{
			{Location: load.Origin, Type: StopPickup, Window: load.Pickup, Dwell: 45 * time.Minute},
			{Location: load.Destination, Type: StopDelivery, Window: load.Delivery, Dwell: 30 * time.Minute},
		},
		TotalMiles:  load.Mileage,
		Duration:    time.Duration(load.Mileage / p.opts.BaseSpeedMPH * float64(time.Hour)),
		FuelCost:    p.fuelCost(load.Mileage),
		Constraints: constraints,
	}
}

func (p *Optimizer) fuelCost(miles float64) float64 {
	return miles / p.opts.MilesPerGallon * p.opts.FuelPricePerGallon
}

// aggregate folds per-load savings into record metrics. Zero loads yields
// zero metrics.
func (p *Optimizer) aggregate(loads []LoadRoute) PerformanceMetrics {
	if len(loads) == 0 {
		return PerformanceMetrics{}
	}
	var m PerformanceMetrics
	for _, lr := range loads {
		m.AvgFuelEfficiencyGainPct += lr.Savings.MilesPct
		m.AvgDeadheadReductionPct += lr.Savings.MilesPct
		m.TotalFuelSavings += lr.Savings.FuelCost
		m.TotalMilesSaved += lr.Savings.DeadheadMiles
	}
	n := float64(len(loads))
	m.AvgFuelEfficiencyGainPct /= n
	m.AvgDeadheadReductionPct /= n
	m.RevenueIncreaseEstimate = m.TotalFuelSavings * p.opts.RevenueFactor
	m.DriverSatisfactionPct = p.opts.DriverSatisfactionPct
	return m
}

// OptimizeFleet runs the fleet-wide variant: for each vehicle it gathers the
// admissible open loads and aggregates the projected savings, without
// per-load route detail. Vehicles are processed concurrently; the store is
// only read.
func (p *Optimizer) OptimizeFleet(ctx context.Context, vehicleIDs []string) (*OptimizationRecord, error) {
	rec := &OptimizationRecord{
		ID:             uuid.NewString(),
		Kind:           KindFleet,
		VehicleIDs:     append([]string(nil), vehicleIDs...),
		LoadsOptimized: []LoadRoute{},
		Narrative:      FallbackNarrative(),
		Plan:           implementationPlan,
		CreatedAt:      time.Now().UTC(),
	}
	if len(vehicleIDs) == 0 {
		p.runs.Inc()
		return rec, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := p.store.Snapshot()
	perVehicle := fn.ParMap(vehicleIDs, p.opts.FleetWorkers, func(vehicleID string) PerformanceMetrics {
		spec, ok := p.catalog.VehicleSpec(vehicleID)
		if !ok {
			return PerformanceMetrics{}
		}
		var routes []LoadRoute
		for _, o := range snap {
			if catalog.IsAdmissible(o, spec) {
				routes = append(routes, p.optimizeLoad(o))
			}
		}
		return p.aggregate(routes)
	})

	rec.Metrics = mergeFleetMetrics(perVehicle, p.opts.DriverSatisfactionPct)
	rec.Triggers = ReoptimizationTriggers{Weather: true, Traffic: true, DriverAvailability: true}
	p.runs.Inc()
	p.logger.Info("fleet optimization complete", "vehicles", len(vehicleIDs), "miles_saved", rec.Metrics.TotalMilesSaved)
	return rec, nil
}

func mergeFleetMetrics(per []PerformanceMetrics, satisfaction float64) PerformanceMetrics {
	var merged PerformanceMetrics
	active := 0
	for _, m := range per {
		if m == (PerformanceMetrics{}) {
			continue
		}
		active++
		merged.AvgFuelEfficiencyGainPct += m.AvgFuelEfficiencyGainPct
		merged.AvgDeadheadReductionPct += m.AvgDeadheadReductionPct
		merged.RevenueIncreaseEstimate += m.RevenueIncreaseEstimate
		merged.TotalFuelSavings += m.TotalFuelSavings
		merged.TotalMilesSaved += m.TotalMilesSaved
	}
	if active == 0 {
		return PerformanceMetrics{}
	}
	merged.AvgFuelEfficiencyGainPct /= float64(active)
	merged.AvgDeadheadReductionPct /= float64(active)
	merged.DriverSatisfactionPct = satisfaction
	return merged
}
