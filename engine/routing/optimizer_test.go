package routing

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/haulcore/dispatch-engine/engine/catalog"
	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/engine/market"
)

func testLoad(id string) domain.LoadOpportunity {
	o := domain.LoadOpportunity{
		ID:           id,
		VehicleClass: domain.ClassLightDuty,
		Equipment:    domain.EquipFlatbed,
		Origin:       "Phoenix, AZ",
		Destination:  "Tucson, AZ",
		WeightLbs:    8500,
		Cargo:        domain.Dimensions{LengthFt: 16, WidthFt: 7, HeightFt: 5},
		Rate:         1800,
		Mileage:      113,
		Urgency:      domain.UrgencyHotshot,
		Size:         domain.SizePartial,
		Channel:      domain.ChannelLoadBoard,
		MatchScore:   70,
		MarketRate:   1650,
	}
	o.RecalcDerived()
	return o
}

func newTestOptimizer(advisor Advisor, improve ImprovementSource) (*Optimizer, *market.Store, *catalog.Catalog) {
	cat := catalog.New()
	catalog.Seed(cat)
	store := market.NewStore()
	return NewOptimizer(cat, store, advisor, improve, DefaultOptions(), nil, nil), store, cat
}

func TestOptimizeMultiLoad_EmptyLoads(t *testing.T) {
	p, _, _ := newTestOptimizer(nil, FixedImprovement{F: 0.1})

	rec, err := p.OptimizeMultiLoad(context.Background(), nil, "truck-7")
	if err != nil {
		t.Fatalf("empty load set must not error: %v", err)
	}
	if rec.LoadsOptimized == nil {
		t.Error("loads optimized must be an empty slice, not nil")
	}
	if len(rec.LoadsOptimized) != 0 {
		t.Errorf("loads optimized = %d, want 0", len(rec.LoadsOptimized))
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"loads_optimized":[]`) {
		t.Errorf("empty record must serialize loads_optimized as []:\n%s", data)
	}
	if rec.Metrics != (PerformanceMetrics{}) {
		t.Errorf("metrics not zero: %+v", rec.Metrics)
	}
	if rec.Kind != KindMultiLoad {
		t.Errorf("kind = %q", rec.Kind)
	}
	if rec.ID == "" {
		t.Error("record must carry an ID")
	}
}

func TestOptimizeMultiLoad_FallbackOnAdvisorError(t *testing.T) {
	p, _, _ := newTestOptimizer(StaticAdvisor{Err: errors.New("advisory down")}, FixedImprovement{F: 0.1})

	rec, err := p.OptimizeMultiLoad(context.Background(), []domain.LoadOpportunity{testLoad("l1")}, "truck-7")
	if err != nil {
		t.Fatalf("advisory failure must not surface: %v", err)
	}
	if rec.Narrative.RiskTier != FallbackRisk {
		t.Errorf("risk tier = %q, want %q", rec.Narrative.RiskTier, FallbackRisk)
	}
	if rec.Narrative.ConfidencePct != FallbackConfidence {
		t.Errorf("confidence = %g, want %g", rec.Narrative.ConfidencePct, FallbackConfidence)
	}
	if rec.Narrative.PrimaryStrategy != FallbackStrategy {
		t.Errorf("strategy = %q, want %q", rec.Narrative.PrimaryStrategy, FallbackStrategy)
	}
}

func TestOptimizeMultiLoad_AdvisorNarrativeUsed(t *testing.T) {
	want := Narrative{PrimaryStrategy: "cluster_by_region", RiskTier: "medium", ConfidencePct: 91}
	p, _, _ := newTestOptimizer(StaticAdvisor{Result: want}, FixedImprovement{F: 0.1})

	rec, err := p.OptimizeMultiLoad(context.Background(), []domain.LoadOpportunity{testLoad("l1")}, "truck-7")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Narrative.PrimaryStrategy != want.PrimaryStrategy || rec.Narrative.ConfidencePct != want.ConfidencePct {
		t.Errorf("narrative = %+v, want %+v", rec.Narrative, want)
	}
}

func TestOptimizeMultiLoad_SavingsMath(t *testing.T) {
	p, _, _ := newTestOptimizer(nil, FixedImprovement{F: 0.10})

	load := testLoad("l1")
	load.Mileage = 650 // over the hours-of-service threshold
	rec, err := p.OptimizeMultiLoad(context.Background(), []domain.LoadOpportunity{load}, "truck-7")
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.LoadsOptimized) != 1 {
		t.Fatalf("loads optimized = %d, want 1", len(rec.LoadsOptimized))
	}
	lr := rec.LoadsOptimized[0]

	if got := lr.Original.TotalMiles; got != 650 {
		t.Errorf("original miles = %g, want 650", got)
	}
	if got, want := lr.Optimized.TotalMiles, 650*0.9; math.Abs(got-want) > 1e-9 {
		t.Errorf("optimized miles = %g, want %g", got, want)
	}
	if got, want := lr.Savings.DeadheadMiles, 65.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("deadhead miles saved = %g, want %g", got, want)
	}
	if got, want := lr.Savings.MilesPct, 10.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("miles pct = %g, want %g", got, want)
	}

	opts := DefaultOptions()
	wantFuel := (650 - 650*0.9) / opts.MilesPerGallon * opts.FuelPricePerGallon
	if math.Abs(lr.Savings.FuelCost-wantFuel) > 1e-9 {
		t.Errorf("fuel savings = %g, want %g", lr.Savings.FuelCost, wantFuel)
	}
	if lr.Savings.Time <= 0 {
		t.Errorf("time savings = %v, want positive", lr.Savings.Time)
	}
	if !lr.Original.Constraints.HoursOfService {
		t.Error("650-mile route must flag hours of service")
	}

	if math.Abs(rec.Metrics.TotalMilesSaved-65) > 1e-9 {
		t.Errorf("total miles saved = %g, want 65", rec.Metrics.TotalMilesSaved)
	}
	if math.Abs(rec.Metrics.RevenueIncreaseEstimate-rec.Metrics.TotalFuelSavings*opts.RevenueFactor) > 1e-9 {
		t.Error("revenue estimate must derive from fuel savings")
	}
}

func TestOptimizeMultiLoad_ImprovementClamped(t *testing.T) {
	p, _, _ := newTestOptimizer(nil, FixedImprovement{F: 0.9})

	rec, err := p.OptimizeMultiLoad(context.Background(), []domain.LoadOpportunity{testLoad("l1")}, "truck-7")
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.LoadsOptimized[0].Savings.MilesPct; got != 50 {
		t.Errorf("miles pct = %g, want clamped to 50", got)
	}
}

func TestOptimizeMultiLoad_RequirementsMapToConstraints(t *testing.T) {
	p, _, _ := newTestOptimizer(nil, FixedImprovement{F: 0.1})

	load := testLoad("l1")
	load.Requirements = []string{"hazmat", "temperature_control"}
	rec, err := p.OptimizeMultiLoad(context.Background(), []domain.LoadOpportunity{load}, "truck-7")
	if err != nil {
		t.Fatal(err)
	}
	c := rec.LoadsOptimized[0].Original.Constraints
	if !c.Hazmat || !c.TemperatureControl {
		t.Errorf("constraints = %+v", c)
	}
	if !rec.Triggers.Equipment {
		t.Error("requirements must arm the equipment trigger")
	}
}

func TestOptimizeMultiLoad_ContextCanceled(t *testing.T) {
	p, _, _ := newTestOptimizer(nil, FixedImprovement{F: 0.1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.OptimizeMultiLoad(ctx, []domain.LoadOpportunity{testLoad("l1")}, "truck-7"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOptimizeFleet_EmptyVehicles(t *testing.T) {
	p, _, _ := newTestOptimizer(nil, FixedImprovement{F: 0.1})

	rec, err := p.OptimizeFleet(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Kind != KindFleet {
		t.Errorf("kind = %q", rec.Kind)
	}
	if rec.Metrics != (PerformanceMetrics{}) {
		t.Errorf("metrics not zero: %+v", rec.Metrics)
	}
}

func TestOptimizeFleet_AdmissibleLoadsOnly(t *testing.T) {
	p, store, cat := newTestOptimizer(nil, FixedImprovement{F: 0.1})

	if err := cat.AssignVehicle("truck-1", catalog.SpecKey{Class: domain.ClassMediumDuty, Body: domain.BodyFlatbed}); err != nil {
		t.Fatal(err)
	}

	fits := testLoad("fits")
	heavy := testLoad("heavy")
	heavy.WeightLbs = 40000 // over any medium-duty rating
	for _, o := range []domain.LoadOpportunity{fits, heavy} {
		if err := store.Put(o); err != nil {
			t.Fatal(err)
		}
	}

	rec, err := p.OptimizeFleet(context.Background(), []string{"truck-1", "ghost-truck"})
	if err != nil {
		t.Fatal(err)
	}
	// One load fits truck-1 at a 10% improvement over 113 miles.
	if want := 113 * 0.1; math.Abs(rec.Metrics.TotalMilesSaved-want) > 1e-9 {
		t.Errorf("total miles saved = %g, want %g", rec.Metrics.TotalMilesSaved, want)
	}
	if rec.Metrics.DriverSatisfactionPct != DefaultOptions().DriverSatisfactionPct {
		t.Errorf("driver satisfaction = %g", rec.Metrics.DriverSatisfactionPct)
	}
}

func TestNewOptimizer_PartialOptionsDefaulted(t *testing.T) {
	cat := catalog.New()
	catalog.Seed(cat)
	p := NewOptimizer(cat, market.NewStore(), nil, FixedImprovement{F: 0.1},
		Options{MilesPerGallon: 7}, nil, nil)

	rec, err := p.OptimizeMultiLoad(context.Background(), []domain.LoadOpportunity{testLoad("l1")}, "truck-7")
	if err != nil {
		t.Fatal(err)
	}
	lr := rec.LoadsOptimized[0]
	if lr.Original.Duration <= 0 {
		t.Errorf("original duration = %v, speeds not defaulted", lr.Original.Duration)
	}
	if lr.Optimized.Duration <= 0 {
		t.Errorf("optimized duration = %v", lr.Optimized.Duration)
	}
	// The explicit field survives defaulting.
	wantFuel := 113.0 / 7 * DefaultOptions().FuelPricePerGallon
	if math.Abs(lr.Original.FuelCost-wantFuel) > 1e-9 {
		t.Errorf("fuel cost = %g, want %g", lr.Original.FuelCost, wantFuel)
	}
}

func TestRandImprovement_WithinBounds(t *testing.T) {
	r := NewRandImprovement(7, 0, 0)
	for i := 0; i < 200; i++ {
		f := r.Factor(domain.LoadOpportunity{})
		if f < DefaultMinImprovement || f > DefaultMaxImprovement {
			t.Fatalf("factor %g outside [%g, %g]", f, DefaultMinImprovement, DefaultMaxImprovement)
		}
	}
}

func TestFallbackNarrative_Deterministic(t *testing.T) {
	a, b := FallbackNarrative(), FallbackNarrative()
	if a.PrimaryStrategy != b.PrimaryStrategy || a.RiskTier != b.RiskTier || a.ConfidencePct != b.ConfidencePct {
		t.Errorf("fallback narrative varies: %+v vs %+v", a, b)
	}
	if a.RiskTier != "low" || a.ConfidencePct != 70 {
		t.Errorf("fallback = %+v", a)
	}
}
