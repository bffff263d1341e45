package market

import (
	"time"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

// CategorySummary aggregates one reporting category.
type CategorySummary struct {
	Count           int     `json:"count"`
	AvgRatePerMile  float64 `json:"avg_rate_per_mile"`
	PeakRatePerMile float64 `json:"peak_rate_per_mile"`
	UrgentLoads     int     `json:"urgent_loads"`
	LocalDeliveries int     `json:"local_deliveries"`
	SameDayLoads    int     `json:"same_day_loads"`
}

// Report is the market snapshot consumed by downstream dashboards.
type Report struct {
	GeneratedAt        time.Time                `json:"generated_at"`
	TotalOpportunities int                      `json:"total_opportunities"`
	Hotshots           CategorySummary          `json:"hotshots"`
	BoxTrucks          CategorySummary          `json:"box_trucks"`
	SmallVehicles      CategorySummary          `json:"small_vehicles"`
	Other              CategorySummary          `json:"other"`
	TopOpportunities   []domain.LoadOpportunity `json:"top_opportunities"`
}

// localMileage is the threshold under which a load counts as a local
// delivery.
const localMileage = 100

// topN is how many top opportunities (by match score) a report carries.
const topN = 5

// GenerateReport partitions a single consistent snapshot of the store into
// the hotshot / box-truck / small-vehicle categories. Because it reads one
// snapshot, the category counts always sum to the total.
func GenerateReport(store *Store, now time.Time) Report {
	snap := store.Snapshot()

	r := Report{GeneratedAt: now, TotalOpportunities: len(snap)}
	for _, o := range snap {
		switch {
		case o.Equipment == domain.EquipHotshot || (o.Equipment == domain.EquipFlatbed && o.Urgency == domain.UrgencyHotshot):
			accumulate(&r.Hotshots, o)
		case o.Equipment == domain.EquipBoxTruck:
			accumulate(&r.BoxTrucks, o)
		case o.Equipment == domain.EquipCargoVan || o.VehicleClass == domain.ClassCargoVan || o.VehicleClass == domain.ClassPickup:
			accumulate(&r.SmallVehicles, o)
		default:
			accumulate(&r.Other, o)
		}
	}
	finalize(&r.Hotshots)
	finalize(&r.BoxTrucks)
	finalize(&r.SmallVehicles)
	finalize(&r.Other)

	r.TopOpportunities = topByScore(snap, topN)
	return r
}

func accumulate(c *CategorySummary, o domain.LoadOpportunity) {
	c.Count++
	c.AvgRatePerMile += o.RatePerMile // running sum; divided in finalize
	if o.RatePerMile > c.PeakRatePerMile {
		c.PeakRatePerMile = o.RatePerMile
	}
	if o.Urgency != domain.UrgencyStandard {
		c.UrgentLoads++
	}
	if o.Mileage < localMileage {
		c.LocalDeliveries++
	}
	if o.Urgency == domain.UrgencySameDay {
		c.SameDayLoads++
	}
}

func finalize(c *CategorySummary) {
	if c.Count > 0 {
		c.AvgRatePerMile /= float64(c.Count)
	}
}

func topByScore(snap []domain.LoadOpportunity, n int) []domain.LoadOpportunity {
	// Snapshot is already ID-ordered; selection sort on match score keeps
	// equal-score ordering deterministic.
	top := make([]domain.LoadOpportunity, 0, n)
	used := make(map[int]bool, n)
	for len(top) < n && len(top) < len(snap) {
		best := -1
		for i, o := range snap {
			if used[i] {
				continue
			}
			if best == -1 || o.MatchScore > snap[best].MatchScore {
				best = i
			}
		}
		used[best] = true
		top = append(top, snap[best])
	}
	return top
}
