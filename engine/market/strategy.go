package market

import "github.com/haulcore/dispatch-engine/engine/domain"

// Registry holds brokerage strategies in insertion order. Order is the
// tie-break: the first eligible strategy wins, so more specific strategies
// are registered ahead of general ones.
type Registry struct {
	strategies []domain.BrokerageStrategy
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a strategy. Strategies are immutable once registered.
func (r *Registry) Register(s domain.BrokerageStrategy) {
	r.strategies = append(r.strategies, s)
}

// All returns the registered strategies in insertion order.
func (r *Registry) All() []domain.BrokerageStrategy {
	out := make([]domain.BrokerageStrategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Select returns the first registered strategy whose equipment, load-size,
// and urgency sets all accept the opportunity. The second return is false
// when nothing matches; callers treat that as "leave the rate unchanged".
func (r *Registry) Select(o domain.LoadOpportunity) (domain.BrokerageStrategy, bool) {
	for _, s := range r.strategies {
		if s.Targets(o) {
			return s, true
		}
	}
	return domain.BrokerageStrategy{}, false
}

// SeedStrategies registers the default strategy set, specific before general.
func SeedStrategies(r *Registry) {
	r.Register(domain.BrokerageStrategy{
		Name:            "small_vehicle_same_day",
		TargetEquipment: []domain.EquipmentType{domain.EquipCargoVan, domain.EquipBoxTruck},
		LoadSizes:       []domain.LoadSize{domain.SizeSmall, domain.SizeLTL},
		UrgencyTiers:    []domain.UrgencyTier{domain.UrgencySameDay, domain.UrgencyEmergency},
		Policy: domain.RatePolicy{
			MinimumMarginPct:  20,
			TargetMarginPct:   35,
			AggressiveBidding: true,
		},
		Channels: []domain.Channel{domain.ChannelDirect, domain.ChannelSpot},
	})
	r.Register(domain.BrokerageStrategy{
		Name:            "hotshot_expedite",
		TargetEquipment: []domain.EquipmentType{domain.EquipHotshot, domain.EquipFlatbed},
		LoadSizes:       []domain.LoadSize{domain.SizePartial, domain.SizeSmall},
		UrgencyTiers:    []domain.UrgencyTier{domain.UrgencyHotshot, domain.UrgencyExpedite, domain.UrgencyEmergency},
		Policy: domain.RatePolicy{
			MinimumMarginPct:  25,
			TargetMarginPct:   40,
			AggressiveBidding: true,
		},
		Channels:       []domain.Channel{domain.ChannelLoadBoard, domain.ChannelSpot},
		GeoPreferences: []string{"southwest", "texas_triangle"},
	})
	r.Register(domain.BrokerageStrategy{
		Name:            "reefer_premium",
		TargetEquipment: []domain.EquipmentType{domain.EquipReefer},
		LoadSizes:       []domain.LoadSize{domain.SizeFull, domain.SizePartial},
		UrgencyTiers:    []domain.UrgencyTier{domain.UrgencyStandard, domain.UrgencyExpedite, domain.UrgencySameDay},
		Policy: domain.RatePolicy{
			MinimumMarginPct:  18,
			TargetMarginPct:   28,
			AggressiveBidding: false,
		},
	})
	r.Register(domain.BrokerageStrategy{
		Name:            "general_freight",
		TargetEquipment: []domain.EquipmentType{domain.EquipDryVan, domain.EquipBoxTruck, domain.EquipFlatbed, domain.EquipStepdeck},
		LoadSizes:       []domain.LoadSize{domain.SizeFull, domain.SizePartial, domain.SizeLTL},
		UrgencyTiers:    []domain.UrgencyTier{domain.UrgencyStandard, domain.UrgencyExpedite},
		Policy: domain.RatePolicy{
			MinimumMarginPct:  12,
			TargetMarginPct:   20,
			AggressiveBidding: false,
		},
		Channels: []domain.Channel{domain.ChannelLoadBoard, domain.ChannelPartner},
	})
}
