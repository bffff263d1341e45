package main

import (
	"log/slog"
	"time"

	"github.com/haulcore/dispatch-engine/engine/catalog"
	"github.com/haulcore/dispatch-engine/engine/dispatch"
	"github.com/haulcore/dispatch-engine/engine/domain"
)

// demoFleet maps demo vehicle IDs to seeded catalog specs. Backhaul and
// fleet optimization resolve vehicles through this assignment.
var demoFleet = map[string]catalog.SpecKey{
	"demo-truck-1": {Class: domain.ClassMediumDuty, Body: domain.BodyFlatbed},
	"demo-truck-2": {Class: domain.ClassHeavyDuty, Body: domain.BodyReefer},
	"demo-box-1":   {Class: domain.ClassMediumDuty, Body: domain.BodyBox},
	"demo-van-1":   {Class: domain.ClassCargoVan, Body: domain.BodyCargoArea},
}

// seedDemoData loads a small fleet and set of open opportunities so a fresh
// instance has something to match, price, and route against. Gated by
// SEED_DEMO_DATA.
func seedDemoData(svc *dispatch.Service, logger *slog.Logger) {
	for id, key := range demoFleet {
		if err := svc.Catalog.AssignVehicle(id, key); err != nil {
			logger.Warn("demo fleet assignment rejected", "vehicle_id", id, "err", err)
		}
	}
	now := time.Now().UTC()
	demo := []domain.LoadOpportunity{
		{
			ID: "demo-hotshot-1", VehicleClass: domain.ClassLightDuty,
			Equipment: domain.EquipFlatbed, Origin: "Phoenix, AZ", Destination: "Tucson, AZ",
			WeightLbs: 8500, Cargo: domain.Dimensions{LengthFt: 16, WidthFt: 7, HeightFt: 5},
			Rate: 1800, Mileage: 113, Urgency: domain.UrgencyHotshot, Size: domain.SizePartial,
			Channel: domain.ChannelLoadBoard, MatchScore: 85, MarketRate: 1650,
			Commodity: "steel brackets", Source: "demo", PostedAt: now,
		},
		{
			ID: "demo-reefer-1", VehicleClass: domain.ClassHeavyDuty,
			Equipment: domain.EquipReefer, Origin: "Yuma, AZ", Destination: "Denver, CO",
			WeightLbs: 38000, Cargo: domain.Dimensions{LengthFt: 48, WidthFt: 8, HeightFt: 8},
			Rate: 4200, Mileage: 830, Urgency: domain.UrgencyStandard, Size: domain.SizeFull,
			Channel: domain.ChannelPartner, MatchScore: 60, MarketRate: 3900,
			Commodity: "produce", Requirements: []string{"temperature_control"},
			Source: "demo", PostedAt: now,
		},
		{
			ID: "demo-sameday-1", VehicleClass: domain.ClassCargoVan,
			Equipment: domain.EquipCargoVan, Origin: "Tempe, AZ", Destination: "Scottsdale, AZ",
			WeightLbs: 900, Cargo: domain.Dimensions{LengthFt: 4, WidthFt: 3, HeightFt: 3},
			Rate: 240, Mileage: 18, Urgency: domain.UrgencySameDay, Size: domain.SizeSmall,
			Channel: domain.ChannelDirect, MatchScore: 90, MarketRate: 210,
			Commodity: "medical supplies", Source: "demo", PostedAt: now,
		},
		{
			ID: "demo-boxtruck-1", VehicleClass: domain.ClassMediumDuty,
			Equipment: domain.EquipBoxTruck, Origin: "Mesa, AZ", Destination: "Flagstaff, AZ",
			WeightLbs: 11000, Cargo: domain.Dimensions{LengthFt: 20, WidthFt: 7.5, HeightFt: 7.5},
			Rate: 950, Mileage: 160, Urgency: domain.UrgencyExpedite, Size: domain.SizeLTL,
			Channel: domain.ChannelLoadBoard, MatchScore: 55, MarketRate: 880,
			Commodity: "furniture", Source: "demo", PostedAt: now,
		},
	}

	for _, o := range demo {
		if err := svc.AddOpportunity(o); err != nil {
			logger.Warn("demo seed rejected", "load_id", o.ID, "err", err)
		}
	}
	logger.Info("demo data seeded", "vehicles", len(demoFleet), "opportunities", len(demo))
}
