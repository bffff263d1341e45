package catalog

import "github.com/haulcore/dispatch-engine/engine/domain"

// bodyCompat is the fixed many-to-many mapping from vehicle body types to the
// equipment requirements they can serve. Unknown equipment is incompatible.
var bodyCompat = map[domain.BodyType][]domain.EquipmentType{
	domain.BodyDryVan:    {domain.EquipDryVan},
	domain.BodyBox:       {domain.EquipDryVan, domain.EquipBoxTruck},
	domain.BodyFlatbed:   {domain.EquipFlatbed, domain.EquipHotshot},
	domain.BodyPickupBed: {domain.EquipFlatbed, domain.EquipHotshot},
	domain.BodyStepdeck:  {domain.EquipStepdeck, domain.EquipFlatbed},
	domain.BodyCargoArea: {domain.EquipCargoVan, domain.EquipBoxTruck},
	domain.BodyReefer:    {domain.EquipReefer, domain.EquipDryVan},
}

// IsAdmissible decides whether a vehicle spec can legally take a load.
// It is total: unknown equipment or body types yield false, never an error.
// A load is admissible when it is within the weight limit, every cargo
// dimension fits, and the vehicle body serves the required equipment.
func IsAdmissible(o domain.LoadOpportunity, spec domain.VehicleSpecification) bool {
	if o.WeightLbs > spec.MaxWeightLbs {
		return false
	}
	if !o.Cargo.FitsWithin(spec.MaxCargo) {
		return false
	}
	for _, eq := range bodyCompat[spec.Body] {
		if eq == o.Equipment {
			return true
		}
	}
	return false
}
