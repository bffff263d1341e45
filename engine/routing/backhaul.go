package routing

import (
	"sort"

	"github.com/haulcore/dispatch-engine/engine/catalog"
	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/engine/market"
)

// Finder proposes return-leg loads that offset deadhead miles.
type Finder struct {
	store   *market.Store
	catalog *catalog.Catalog
}

// NewFinder creates a backhaul finder.
func NewFinder(store *market.Store, cat *catalog.Catalog) *Finder {
	return &Finder{store: store, catalog: cat}
}

// sizeWeight scales deadhead elimination by how much of the return leg a
// load fills: a full return load beats a partial one at equal mileage.
var sizeWeight = map[domain.LoadSize]float64{
	domain.SizeFull:    1.0,
	domain.SizePartial: 0.7,
	domain.SizeLTL:     0.5,
	domain.SizeSmall:   0.35,
}

// FindBackhaul returns candidates anchored at the route's destination,
// admissible for the vehicle, ranked by estimated deadhead elimination.
// It returns an empty slice, never an error, when nothing fits — including
// when the vehicle is unknown to the catalog.
func (f *Finder) FindBackhaul(route RouteData, vehicleID string) []BackhaulCandidate {
	out := []BackhaulCandidate{}

	spec, ok := f.catalog.VehicleSpec(vehicleID)
	if !ok || route.TotalMiles <= 0 {
		return out
	}

	for _, o := range f.store.Snapshot() {
		if o.Origin != route.Destination {
			continue
		}
		if !catalog.IsAdmissible(o, spec) {
			continue
		}
		ratio := o.Mileage / route.TotalMiles
		if ratio > 1 {
			ratio = 1
		}
		out = append(out, BackhaulCandidate{
			Opportunity:           o,
			DeadheadEliminatedPct: 100 * ratio * sizeWeight[o.Size],
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DeadheadEliminatedPct != out[j].DeadheadEliminatedPct {
			return out[i].DeadheadEliminatedPct > out[j].DeadheadEliminatedPct
		}
		return out[i].Opportunity.ID < out[j].Opportunity.ID
	})
	return out
}
