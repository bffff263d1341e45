package market

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

func newTestMonitor(t *testing.T, source DataSource, opts MonitorOptions) (*Monitor, *Store) {
	t.Helper()
	store := NewStore()
	reg := NewRegistry()
	SeedStrategies(reg)
	return NewMonitor(store, reg, source, opts, nil, nil), store
}

func TestMonitorTick_TimeCriticalScoreClimbsAndCaps(t *testing.T) {
	m, store := newTestMonitor(t, FixedSource{}, MonitorOptions{ScoreStep: 10})

	hot := testLoad("hot") // hotshot urgency
	hot.MatchScore = 75
	std := testLoad("std")
	std.Urgency = domain.UrgencyStandard
	std.MatchScore = 75
	for _, o := range []domain.LoadOpportunity{hot, std} {
		if err := store.Put(o); err != nil {
			t.Fatal(err)
		}
	}

	ctx := context.Background()
	prev := 75.0
	for i := 0; i < 5; i++ {
		m.Tick(ctx)
		got, _ := store.Get("hot")
		if got.MatchScore < prev {
			t.Fatalf("tick %d: score decreased %g -> %g", i, prev, got.MatchScore)
		}
		if got.MatchScore > 100 {
			t.Fatalf("tick %d: score %g exceeds 100", i, got.MatchScore)
		}
		prev = got.MatchScore
	}
	if prev != 100 {
		t.Errorf("score after 5 ticks = %g, want capped at 100", prev)
	}
	if got, _ := store.Get("std"); got.MatchScore != 75 {
		t.Errorf("standard-urgency score = %g, want 75 untouched", got.MatchScore)
	}
}

func TestMonitorTick_AppliesStrategyFloor(t *testing.T) {
	m, store := newTestMonitor(t, FixedSource{}, MonitorOptions{})

	// 1800 on a 1650 market is a ~9% margin, under hotshot_expedite's 25%
	// minimum. One tick must lift the rate to the floor.
	if err := store.Put(testLoad("l1")); err != nil {
		t.Fatal(err)
	}
	m.Tick(context.Background())

	got, _ := store.Get("l1")
	want := 1650 * 1.25
	if math.Abs(got.Rate-want) > 1e-6 {
		t.Errorf("rate = %g, want %g", got.Rate, want)
	}
	if math.Abs(got.Rate-got.RatePerMile*got.Mileage) > 1e-6 {
		t.Error("derived rate-per-mile inconsistent after tick")
	}
}

func TestMonitorTick_IdempotentWithFixedSource(t *testing.T) {
	m, store := newTestMonitor(t, FixedSource{}, MonitorOptions{})

	l := testLoad("l1")
	l.MatchScore = 100 // already capped, so ticks change nothing after the first
	if err := store.Put(l); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	m.Tick(ctx)
	first, _ := store.Get("l1")
	m.Tick(ctx)
	m.Tick(ctx)
	second, _ := store.Get("l1")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("fixed-source ticks not idempotent:\n first = %+v\nsecond = %+v", first, second)
	}
}

func TestMonitorStartStop(t *testing.T) {
	m, store := newTestMonitor(t, FixedSource{}, MonitorOptions{Period: time.Millisecond})
	if err := store.Put(testLoad("l1")); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	m.Start(ctx)
	m.Start(ctx) // second start is a no-op
	time.Sleep(10 * time.Millisecond)
	m.Stop()
	m.Stop() // second stop is a no-op

	got, _ := store.Get("l1")
	if got.MatchScore <= 70 {
		t.Errorf("score = %g, expected ticks to have run", got.MatchScore)
	}
}

func TestSimSource_DriftBounded(t *testing.T) {
	src := NewSimSource(42, SimOptions{MaxDriftPct: 3, Spread: 10})
	o := testLoad("sim")
	for i := 0; i < 200; i++ {
		rate := src.ObserveRate(o)
		low, high := o.MarketRate*0.97, o.MarketRate*1.03
		if rate < low-1e-9 || rate > high+1e-9 {
			t.Fatalf("observation %d: rate %g outside [%g, %g]", i, rate, low, high)
		}
	}
	comp := src.ObserveCompetitors(o)
	if comp.Demand != domain.DemandHigh {
		t.Errorf("hotshot demand = %q, want high", comp.Demand)
	}
	if comp.LowestRate > comp.AverageRate || comp.HighestRate < comp.AverageRate {
		t.Errorf("competitor band inverted: %+v", comp)
	}
}
