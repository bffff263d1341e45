package metrics

import (
	"strings"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	r := New()
	c := r.Counter("ticks_total", "Ticks.")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Errorf("counter = %d, want 5", c.Value())
	}

	g := r.Gauge("open_loads", "Open loads.")
	g.Set(10)
	g.Dec()
	if g.Value() != 9 {
		t.Errorf("gauge = %d, want 9", g.Value())
	}

	// Same name returns the same metric.
	if r.Counter("ticks_total", "") != c {
		t.Error("expected identical counter instance")
	}
}

func TestHistogramRender(t *testing.T) {
	r := New()
	h := r.Histogram("advise_seconds", "Advisory latency.", []float64{0.1, 1})
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5)

	out := r.Render()
	for _, want := range []string{
		"# TYPE advise_seconds histogram",
		`advise_seconds_bucket{le="0.1"} 1`,
		`advise_seconds_bucket{le="1"} 2`,
		`advise_seconds_bucket{le="+Inf"} 3`,
		"advise_seconds_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderOrderAndHelp(t *testing.T) {
	r := New()
	r.Counter("a_total", "First.")
	r.Gauge("b_current", "Second.")

	out := r.Render()
	if !strings.Contains(out, "# HELP a_total First.") {
		t.Error("missing help line")
	}
	if strings.Index(out, "a_total") > strings.Index(out, "b_current") {
		t.Error("metrics must render in registration order")
	}
}
