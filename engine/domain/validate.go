package domain

import (
	"fmt"
	"strings"
)

// ValidateOpportunity is the ingestion gate. Malformed opportunities are
// rejected here, before they can reach the store; the rest of the engine
// assumes validated input and does not re-validate on read.
func ValidateOpportunity(o LoadOpportunity) error {
	if strings.TrimSpace(o.ID) == "" {
		return NewValidationError("id", o.ID, ErrMissingID)
	}
	if strings.TrimSpace(o.Origin) == "" || strings.TrimSpace(o.Destination) == "" {
		return NewValidationError("lane", o.Origin+" -> "+o.Destination, ErrMissingLane)
	}
	if o.Mileage <= 0 {
		return NewValidationError("mileage", fmt.Sprintf("%g", o.Mileage), ErrInvalidMileage)
	}
	if o.Rate <= 0 {
		return NewValidationError("rate", fmt.Sprintf("%g", o.Rate), ErrInvalidRate)
	}
	if o.WeightLbs <= 0 {
		return NewValidationError("weight_lbs", fmt.Sprintf("%g", o.WeightLbs), ErrInvalidWeight)
	}
	if o.Cargo.LengthFt <= 0 || o.Cargo.WidthFt <= 0 || o.Cargo.HeightFt <= 0 {
		return NewValidationError("cargo", fmt.Sprintf("%+v", o.Cargo), ErrInvalidDimensions)
	}
	if !ValidVehicleClasses[o.VehicleClass] {
		return NewValidationError("vehicle_class", string(o.VehicleClass), ErrUnknownClass)
	}
	if !ValidEquipmentTypes[o.Equipment] {
		return NewValidationError("equipment", string(o.Equipment), ErrUnknownEquipment)
	}
	if !ValidUrgencyTiers[o.Urgency] {
		return NewValidationError("urgency", string(o.Urgency), ErrUnknownUrgency)
	}
	if !ValidLoadSizes[o.Size] {
		return NewValidationError("size", string(o.Size), ErrUnknownSize)
	}
	return nil
}

// Normalize fills derived and defaultable fields on a freshly ingested
// opportunity: rate-per-mile and margin from the posted rate, a market rate
// defaulting to the posted rate when the feed omitted one, and a clamped
// match score.
func Normalize(o LoadOpportunity) LoadOpportunity {
	if o.MarketRate <= 0 {
		o.MarketRate = o.Rate
	}
	if o.Competitors.AverageRate <= 0 {
		o.Competitors.AverageRate = o.MarketRate
	}
	if o.MatchScore < 0 {
		o.MatchScore = 0
	}
	if o.MatchScore > 100 {
		o.MatchScore = 100
	}
	o.RecalcDerived()
	return o
}
