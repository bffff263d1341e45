// Package catalog holds the static vehicle-specification registry and the
// load/vehicle compatibility matcher.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

// SpecKey identifies a specification by class and body type.
type SpecKey struct {
	Class domain.VehicleClass
	Body  domain.BodyType
}

func (k SpecKey) String() string {
	return string(k.Class) + "/" + string(k.Body)
}

// Catalog is a registry of vehicle specifications seeded once at startup
// and read-only thereafter. Register is only expected during composition;
// the mutex keeps it safe if a caller seeds late.
type Catalog struct {
	mu    sync.RWMutex
	specs map[SpecKey]domain.VehicleSpecification
	// fleet maps vehicle IDs to their spec key.
	fleet map[string]SpecKey
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		specs: make(map[SpecKey]domain.VehicleSpecification),
		fleet: make(map[string]SpecKey),
	}
}

// Register adds or replaces a specification.
func (c *Catalog) Register(spec domain.VehicleSpecification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs[SpecKey{Class: spec.Class, Body: spec.Body}] = spec
}

// AssignVehicle records which spec a fleet vehicle was built to.
func (c *Catalog) AssignVehicle(vehicleID string, key SpecKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.specs[key]; !ok {
		return fmt.Errorf("assign vehicle %q: no spec registered for %s", vehicleID, key)
	}
	c.fleet[vehicleID] = key
	return nil
}

// Spec returns the specification for a class/body pair.
func (c *Catalog) Spec(class domain.VehicleClass, body domain.BodyType) (domain.VehicleSpecification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.specs[SpecKey{Class: class, Body: body}]
	return s, ok
}

// VehicleSpec resolves a fleet vehicle ID to its specification.
func (c *Catalog) VehicleSpec(vehicleID string) (domain.VehicleSpecification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.fleet[vehicleID]
	if !ok {
		return domain.VehicleSpecification{}, false
	}
	s, ok := c.specs[key]
	return s, ok
}

// All returns every registered specification in a stable key order.
func (c *Catalog) All() []domain.VehicleSpecification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]SpecKey, 0, len(c.specs))
	for k := range c.specs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make([]domain.VehicleSpecification, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.specs[k])
	}
	return out
}

// Seed registers the default fleet specifications.
func Seed(c *Catalog) {
	for _, spec := range defaultSpecs {
		c.Register(spec)
	}
}

var defaultSpecs = []domain.VehicleSpecification{
	{
		Class:        domain.ClassHeavyDuty,
		Body:         domain.BodyDryVan,
		MaxWeightLbs: 45000,
		MaxCargo:     domain.Dimensions{LengthFt: 53, WidthFt: 8.5, HeightFt: 9},
		Capabilities: []string{"long_haul"},
	},
	{
		Class:        domain.ClassHeavyDuty,
		Body:         domain.BodyFlatbed,
		MaxWeightLbs: 48000,
		MaxCargo:     domain.Dimensions{LengthFt: 48, WidthFt: 8.5, HeightFt: 8.5},
		Capabilities: []string{"long_haul", "oversize"},
	},
	{
		Class:        domain.ClassHeavyDuty,
		Body:         domain.BodyReefer,
		MaxWeightLbs: 43000,
		MaxCargo:     domain.Dimensions{LengthFt: 53, WidthFt: 8.5, HeightFt: 8.5},
		Capabilities: []string{"long_haul", "temperature_control"},
	},
	{
		Class:        domain.ClassMediumDuty,
		Body:         domain.BodyBox,
		MaxWeightLbs: 26000,
		MaxCargo:     domain.Dimensions{LengthFt: 26, WidthFt: 8, HeightFt: 8},
		Capabilities: []string{"urban_access", "liftgate"},
	},
	{
		Class:        domain.ClassMediumDuty,
		Body:         domain.BodyFlatbed,
		MaxWeightLbs: 19500,
		MaxCargo:     domain.Dimensions{LengthFt: 24, WidthFt: 8.5, HeightFt: 8.5},
		Capabilities: []string{"expedite", "hotshot"},
	},
	{
		Class:        domain.ClassLightDuty,
		Body:         domain.BodyFlatbed,
		MaxWeightLbs: 14000,
		MaxCargo:     domain.Dimensions{LengthFt: 20, WidthFt: 8, HeightFt: 7},
		Capabilities: []string{"expedite", "hotshot"},
	},
	{
		Class:        domain.ClassLightDuty,
		Body:         domain.BodyStepdeck,
		MaxWeightLbs: 15000,
		MaxCargo:     domain.Dimensions{LengthFt: 22, WidthFt: 8.5, HeightFt: 9.5},
		Capabilities: []string{"expedite", "tall_cargo"},
	},
	{
		Class:        domain.ClassCargoVan,
		Body:         domain.BodyCargoArea,
		MaxWeightLbs: 10000,
		MaxCargo:     domain.Dimensions{LengthFt: 14, WidthFt: 6, HeightFt: 6.5},
		Capabilities: []string{"expedite", "urban_access", "same_day"},
	},
	{
		Class:        domain.ClassPickup,
		Body:         domain.BodyPickupBed,
		MaxWeightLbs: 3000,
		MaxCargo:     domain.Dimensions{LengthFt: 8, WidthFt: 5.5, HeightFt: 5},
		Capabilities: []string{"expedite", "urban_access", "same_day"},
	},
}
