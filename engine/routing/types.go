// Package routing produces multi-load route optimizations, backhaul
// candidates, and the records that describe them.
package routing

import (
	"time"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

// StopType tags a waypoint's purpose.
type StopType string

const (
	StopPickup      StopType = "pickup"
	StopDelivery    StopType = "delivery"
	StopFuel        StopType = "fuel"
	StopRest        StopType = "rest"
	StopMaintenance StopType = "maintenance"
)

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Waypoint is one stop on a route.
type Waypoint struct {
	Location string            `json:"location"`
	Coord    GeoPoint          `json:"coord"`
	Type     StopType          `json:"type"`
	Window   domain.TimeWindow `json:"window"`
	Dwell    time.Duration     `json:"dwell"`
}

// RouteConstraints flags operating constraints on a route.
type RouteConstraints struct {
	HoursOfService     bool `json:"hours_of_service"`
	TruckRestrictions  bool `json:"truck_restrictions"`
	Hazmat             bool `json:"hazmat"`
	TemperatureControl bool `json:"temperature_control"`
}

// RouteData is a planned route. It is produced fresh per optimization and
// never mutated after return; re-optimization replaces it wholesale.
type RouteData struct {
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	Waypoints   []Waypoint       `json:"waypoints"`
	TotalMiles  float64          `json:"total_miles"`
	Duration    time.Duration    `json:"duration"`
	FuelCost    float64          `json:"fuel_cost"`
	Tolls       float64          `json:"tolls"`
	Constraints RouteConstraints `json:"constraints"`
}

// Savings is the delta between an original and optimized route for one load.
type Savings struct {
	FuelCost      float64       `json:"fuel_cost"`
	Time          time.Duration `json:"time"`
	DeadheadMiles float64       `json:"deadhead_miles"`
	MilesPct      float64       `json:"miles_pct"`
}

// LoadRoute pairs a load with its before/after routes and computed savings.
type LoadRoute struct {
	LoadID    string    `json:"load_id"`
	Original  RouteData `json:"original"`
	Optimized RouteData `json:"optimized"`
	Savings   Savings   `json:"savings"`
}

// Narrative is the advisory service's strategy summary for an optimization.
type Narrative struct {
	PrimaryStrategy string   `json:"primary_strategy"`
	Alternatives    []string `json:"alternatives"`
	RiskTier        string   `json:"risk_tier"`
	ConfidencePct   float64  `json:"confidence_pct"`
}

// PerformanceMetrics aggregates per-load savings for a record.
type PerformanceMetrics struct {
	AvgFuelEfficiencyGainPct float64 `json:"avg_fuel_efficiency_gain_pct"`
	AvgDeadheadReductionPct  float64 `json:"avg_deadhead_reduction_pct"`
	RevenueIncreaseEstimate  float64 `json:"revenue_increase_estimate"`
	DriverSatisfactionPct    float64 `json:"driver_satisfaction_pct"`
	TotalFuelSavings         float64 `json:"total_fuel_savings"`
	TotalMilesSaved          float64 `json:"total_miles_saved"`
}

// OptimizationKind classifies an optimization request.
type OptimizationKind string

const (
	KindMultiLoad OptimizationKind = "multi_load"
	KindBackhaul  OptimizationKind = "backhaul"
	KindTeam      OptimizationKind = "team_driving"
	KindFleet     OptimizationKind = "fleet_wide"
)

// ReoptimizationTriggers flags which live factors should force a re-plan.
type ReoptimizationTriggers struct {
	Weather            bool `json:"weather"`
	Traffic            bool `json:"traffic"`
	Equipment          bool `json:"equipment"`
	DriverAvailability bool `json:"driver_availability"`
}

// OptimizationRecord is the immutable result of one optimization request.
// A re-optimization produces a new record that supersedes it.
type OptimizationRecord struct {
	ID             string                 `json:"id"`
	Kind           OptimizationKind       `json:"kind"`
	VehicleIDs     []string               `json:"vehicle_ids"`
	LoadsOptimized []LoadRoute            `json:"loads_optimized"`
	Narrative      Narrative              `json:"narrative"`
	Plan           []string               `json:"plan"`
	Metrics        PerformanceMetrics     `json:"metrics"`
	Triggers       ReoptimizationTriggers `json:"triggers"`
	CreatedAt      time.Time              `json:"created_at"`
}

// BackhaulCandidate is a proposed return-leg load.
type BackhaulCandidate struct {
	Opportunity           domain.LoadOpportunity `json:"opportunity"`
	DeadheadEliminatedPct float64                `json:"deadhead_eliminated_pct"`
}
