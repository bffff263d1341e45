package catalog

import (
	"testing"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

func flatbedLoad() domain.LoadOpportunity {
	return domain.LoadOpportunity{
		ID:          "load-A",
		Equipment:   domain.EquipFlatbed,
		WeightLbs:   8500,
		Cargo:       domain.Dimensions{LengthFt: 16, WidthFt: 7, HeightFt: 5},
		Origin:      "Phoenix, AZ",
		Destination: "Flagstaff, AZ",
	}
}

// A flatbed load against a medium-duty flatbed is admissible; the same load
// against a cargo van is not, regardless of weight headroom.
func TestIsAdmissible_FlatbedVsCargoVan(t *testing.T) {
	flatbed := domain.VehicleSpecification{
		Class:        domain.ClassMediumDuty,
		Body:         domain.BodyFlatbed,
		MaxWeightLbs: 19500,
		MaxCargo:     domain.Dimensions{LengthFt: 24, WidthFt: 8.5, HeightFt: 8.5},
	}
	cargoVan := domain.VehicleSpecification{
		Class:        domain.ClassCargoVan,
		Body:         domain.BodyCargoArea,
		MaxWeightLbs: 10000,
		MaxCargo:     domain.Dimensions{LengthFt: 14, WidthFt: 6, HeightFt: 6.5},
	}

	load := flatbedLoad()
	if !IsAdmissible(load, flatbed) {
		t.Error("8,500 lb flatbed load must fit a 19,500 lb flatbed")
	}
	if IsAdmissible(load, cargoVan) {
		t.Error("flatbed load must not fit a cargo-area body")
	}
}

func TestIsAdmissible_CapacityInvariant(t *testing.T) {
	spec := domain.VehicleSpecification{
		Class:        domain.ClassLightDuty,
		Body:         domain.BodyFlatbed,
		MaxWeightLbs: 14000,
		MaxCargo:     domain.Dimensions{LengthFt: 20, WidthFt: 8, HeightFt: 7},
	}

	over := flatbedLoad()
	over.WeightLbs = 14001
	if IsAdmissible(over, spec) {
		t.Error("load above max weight must be rejected")
	}

	tooLong := flatbedLoad()
	tooLong.Cargo.LengthFt = 20.5
	if IsAdmissible(tooLong, spec) {
		t.Error("load longer than the deck must be rejected")
	}

	tooTall := flatbedLoad()
	tooTall.Cargo.HeightFt = 7.1
	if IsAdmissible(tooTall, spec) {
		t.Error("load taller than the limit must be rejected")
	}

	// Every accepted pair satisfies weight and dimensional bounds.
	ok := flatbedLoad()
	if !IsAdmissible(ok, spec) {
		t.Fatal("in-bounds load must be admissible")
	}
	if ok.WeightLbs > spec.MaxWeightLbs || !ok.Cargo.FitsWithin(spec.MaxCargo) {
		t.Error("admissible load violates the capacity invariant")
	}
}

func TestIsAdmissible_UnknownEquipmentIsTotal(t *testing.T) {
	spec := domain.VehicleSpecification{
		Class:        domain.ClassHeavyDuty,
		Body:         domain.BodyDryVan,
		MaxWeightLbs: 45000,
		MaxCargo:     domain.Dimensions{LengthFt: 53, WidthFt: 8.5, HeightFt: 9},
	}
	load := flatbedLoad()
	load.Equipment = "hovercraft"
	if IsAdmissible(load, spec) {
		t.Error("unknown equipment must be treated as incompatible")
	}
}

func TestCatalogSeedAndLookup(t *testing.T) {
	c := New()
	Seed(c)

	spec, ok := c.Spec(domain.ClassMediumDuty, domain.BodyFlatbed)
	if !ok {
		t.Fatal("seeded medium-duty flatbed spec missing")
	}
	if spec.MaxWeightLbs != 19500 {
		t.Errorf("medium-duty flatbed max weight = %g, want 19500", spec.MaxWeightLbs)
	}
	if !spec.HasCapability("hotshot") {
		t.Error("medium-duty flatbed should carry the hotshot capability")
	}

	if _, ok := c.Spec(domain.ClassPickup, domain.BodyDryVan); ok {
		t.Error("unseeded class/body pair must not resolve")
	}

	if n := len(c.All()); n != 9 {
		t.Errorf("seeded spec count = %d, want 9", n)
	}
}

func TestCatalogVehicleAssignment(t *testing.T) {
	c := New()
	Seed(c)

	key := SpecKey{Class: domain.ClassLightDuty, Body: domain.BodyFlatbed}
	if err := c.AssignVehicle("truck-7", key); err != nil {
		t.Fatalf("assign: %v", err)
	}

	spec, ok := c.VehicleSpec("truck-7")
	if !ok {
		t.Fatal("assigned vehicle did not resolve")
	}
	if spec.Class != domain.ClassLightDuty || spec.Body != domain.BodyFlatbed {
		t.Errorf("resolved spec %s/%s, want light_duty/flatbed", spec.Class, spec.Body)
	}

	if err := c.AssignVehicle("truck-8", SpecKey{Class: domain.ClassPickup, Body: domain.BodyDryVan}); err == nil {
		t.Error("assigning an unregistered spec must fail")
	}
	if _, ok := c.VehicleSpec("truck-unknown"); ok {
		t.Error("unknown vehicle must not resolve")
	}
}
