// Package domain defines the core dispatch data model, enumerated tiers, and
// validation for the engine. It acts as the validation gate at ingestion
// entry points: nothing reaches the opportunity store unvalidated.
package domain

import "time"

// VehicleClass is an enumerated duty tier, heaviest first.
type VehicleClass string

const (
	ClassHeavyDuty  VehicleClass = "heavy_duty"
	ClassMediumDuty VehicleClass = "medium_duty"
	ClassLightDuty  VehicleClass = "light_duty"
	ClassCargoVan   VehicleClass = "cargo_van"
	ClassPickup     VehicleClass = "pickup"
)

// ValidVehicleClasses is the set of recognised vehicle classes.
var ValidVehicleClasses = map[VehicleClass]bool{
	ClassHeavyDuty: true, ClassMediumDuty: true, ClassLightDuty: true,
	ClassCargoVan: true, ClassPickup: true,
}

// BodyType identifies the cargo body fitted to a vehicle.
type BodyType string

const (
	BodyDryVan    BodyType = "dry_van"
	BodyFlatbed   BodyType = "flatbed"
	BodyBox       BodyType = "box"
	BodyCargoArea BodyType = "cargo_area"
	BodyPickupBed BodyType = "pickup_bed"
	BodyStepdeck  BodyType = "stepdeck"
	BodyReefer    BodyType = "reefer"
)

// ValidBodyTypes is the set of recognised body types.
var ValidBodyTypes = map[BodyType]bool{
	BodyDryVan: true, BodyFlatbed: true, BodyBox: true, BodyCargoArea: true,
	BodyPickupBed: true, BodyStepdeck: true, BodyReefer: true,
}

// EquipmentType is the equipment a load requires from the vehicle side.
type EquipmentType string

const (
	EquipDryVan   EquipmentType = "dry_van"
	EquipFlatbed  EquipmentType = "flatbed"
	EquipBoxTruck EquipmentType = "box_truck"
	EquipCargoVan EquipmentType = "cargo_van"
	EquipStepdeck EquipmentType = "stepdeck"
	EquipReefer   EquipmentType = "reefer"
	EquipHotshot  EquipmentType = "hotshot"
)

// ValidEquipmentTypes is the set of recognised equipment types.
var ValidEquipmentTypes = map[EquipmentType]bool{
	EquipDryVan: true, EquipFlatbed: true, EquipBoxTruck: true,
	EquipCargoVan: true, EquipStepdeck: true, EquipReefer: true,
	EquipHotshot: true,
}

// UrgencyTier orders loads from routine freight to emergency dispatch.
type UrgencyTier string

const (
	UrgencyStandard  UrgencyTier = "standard"
	UrgencyExpedite  UrgencyTier = "expedite"
	UrgencySameDay   UrgencyTier = "same_day"
	UrgencyHotshot   UrgencyTier = "hotshot"
	UrgencyEmergency UrgencyTier = "emergency"
)

// ValidUrgencyTiers is the set of recognised urgency tiers.
var ValidUrgencyTiers = map[UrgencyTier]bool{
	UrgencyStandard: true, UrgencyExpedite: true, UrgencySameDay: true,
	UrgencyHotshot: true, UrgencyEmergency: true,
}

// TimeCritical reports whether an urgency tier is in the most time-critical
// band (the tiers whose match score climbs on every monitor tick).
func (u UrgencyTier) TimeCritical() bool {
	return u == UrgencySameDay || u == UrgencyHotshot
}

// LoadSize categorises how much of a trailer a load occupies.
type LoadSize string

const (
	SizeFull    LoadSize = "full"
	SizePartial LoadSize = "partial"
	SizeLTL     LoadSize = "ltl"
	SizeSmall   LoadSize = "small"
)

// ValidLoadSizes is the set of recognised load-size categories.
var ValidLoadSizes = map[LoadSize]bool{
	SizeFull: true, SizePartial: true, SizeLTL: true, SizeSmall: true,
}

// DemandLevel is a qualitative read of lane demand from competitor data.
type DemandLevel string

const (
	DemandLow    DemandLevel = "low"
	DemandMedium DemandLevel = "medium"
	DemandHigh   DemandLevel = "high"
)

// Channel identifies the brokerage channel an opportunity came through.
type Channel string

const (
	ChannelLoadBoard Channel = "load_board"
	ChannelDirect    Channel = "direct_shipper"
	ChannelPartner   Channel = "partner_broker"
	ChannelSpot      Channel = "spot_market"
)

// Dimensions are cargo dimensions in feet.
type Dimensions struct {
	LengthFt float64 `json:"length_ft"`
	WidthFt  float64 `json:"width_ft"`
	HeightFt float64 `json:"height_ft"`
}

// FitsWithin reports whether every dimension fits inside the other.
func (d Dimensions) FitsWithin(other Dimensions) bool {
	return d.LengthFt <= other.LengthFt &&
		d.WidthFt <= other.WidthFt &&
		d.HeightFt <= other.HeightFt
}

// TimeWindow bounds a pickup or delivery appointment.
type TimeWindow struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// CompetitorRates summarises observed competitor pricing on a lane.
type CompetitorRates struct {
	AverageRate float64     `json:"average_rate"`
	LowestRate  float64     `json:"lowest_rate"`
	HighestRate float64     `json:"highest_rate"`
	Demand      DemandLevel `json:"demand"`
}

// VehicleSpecification is an immutable vehicle spec seeded at startup and
// keyed by class+body in the catalog.
type VehicleSpecification struct {
	Class        VehicleClass `json:"class"`
	Body         BodyType     `json:"body"`
	MaxWeightLbs float64      `json:"max_weight_lbs"`
	MaxCargo     Dimensions   `json:"max_cargo"`
	Capabilities []string     `json:"capabilities,omitempty"` // e.g. expedite, long_haul, urban_access
}

// HasCapability reports whether the spec carries the given capability tag.
func (s VehicleSpecification) HasCapability(tag string) bool {
	for _, c := range s.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

// LoadOpportunity is the mutable unit of work. Weight and dimensions never
// change after creation; only rate, score, and margin fields are mutated,
// and only through the store's update path.
type LoadOpportunity struct {
	ID           string          `json:"id"`
	VehicleClass VehicleClass    `json:"vehicle_class"`
	Equipment    EquipmentType   `json:"equipment"`
	Origin       string          `json:"origin"`
	Destination  string          `json:"destination"`
	WeightLbs    float64         `json:"weight_lbs"`
	Cargo        Dimensions      `json:"cargo"`
	Pieces       int             `json:"pieces"`
	Commodity    string          `json:"commodity"`
	Rate         float64         `json:"rate"`
	RatePerMile  float64         `json:"rate_per_mile"`
	Mileage      float64         `json:"mileage"`
	Urgency      UrgencyTier     `json:"urgency"`
	Size         LoadSize        `json:"size"`
	Channel      Channel         `json:"channel"`
	MatchScore   float64         `json:"match_score"` // 0–100
	MarketRate   float64         `json:"market_rate"`
	Competitors  CompetitorRates `json:"competitors"`
	Pickup       TimeWindow      `json:"pickup"`
	Delivery     TimeWindow      `json:"delivery"`
	Requirements []string        `json:"requirements,omitempty"`
	ProfitMargin float64         `json:"profit_margin"` // percent over market rate
	Source       string          `json:"source"`
	PostedAt     time.Time       `json:"posted_at"`
}

// SetRate updates the rate and recomputes both derived fields so a record is
// never observable with rate changed but rate-per-mile or margin stale.
func (o *LoadOpportunity) SetRate(rate float64) {
	o.Rate = rate
	o.RecalcDerived()
}

// SetMarketRate updates the observed market rate and recomputes the margin.
func (o *LoadOpportunity) SetMarketRate(rate float64) {
	o.MarketRate = rate
	o.RecalcDerived()
}

// RecalcDerived recomputes rate-per-mile and profit margin from the current
// rate, mileage, and market rate. Mileage is validated non-zero at ingestion.
func (o *LoadOpportunity) RecalcDerived() {
	if o.Mileage > 0 {
		o.RatePerMile = o.Rate / o.Mileage
	}
	if o.MarketRate > 0 {
		o.ProfitMargin = (o.Rate - o.MarketRate) / o.MarketRate * 100
	}
}

// RatePolicy is a strategy's margin policy.
type RatePolicy struct {
	MinimumMarginPct  float64 `json:"minimum_margin_pct"`
	TargetMarginPct   float64 `json:"target_margin_pct"`
	AggressiveBidding bool    `json:"aggressive_bidding"`
	// BidPremium multiplies the competitor average when aggressively bidding.
	// Zero means the default 1.05 premium.
	BidPremium float64 `json:"bid_premium,omitempty"`
}

// BrokerageStrategy is an immutable policy record seeded at startup.
type BrokerageStrategy struct {
	Name            string          `json:"name"`
	TargetEquipment []EquipmentType `json:"target_equipment"`
	LoadSizes       []LoadSize      `json:"load_sizes"`
	UrgencyTiers    []UrgencyTier   `json:"urgency_tiers"`
	Policy          RatePolicy      `json:"policy"`
	Channels        []Channel       `json:"channels,omitempty"`
	GeoPreferences  []string        `json:"geo_preferences,omitempty"`
}

// Targets reports whether the strategy accepts the opportunity's equipment,
// load size, and urgency tier.
func (s BrokerageStrategy) Targets(o LoadOpportunity) bool {
	return containsEquip(s.TargetEquipment, o.Equipment) &&
		containsSize(s.LoadSizes, o.Size) &&
		containsUrgency(s.UrgencyTiers, o.Urgency)
}

func containsEquip(set []EquipmentType, v EquipmentType) bool {
	for _, e := range set {
		if e == v {
			return true
		}
	}
	return false
}

func containsSize(set []LoadSize, v LoadSize) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsUrgency(set []UrgencyTier, v UrgencyTier) bool {
	for _, u := range set {
		if u == v {
			return true
		}
	}
	return false
}
