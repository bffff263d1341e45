package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/pkg/metrics"
)

// MonitorOptions configures the scheduled market monitor.
type MonitorOptions struct {
	// Period between ticks. Zero means DefaultPeriod.
	Period time.Duration
	// ScoreStep is how far a time-critical load's match score climbs per
	// tick, bounded at 100.
	ScoreStep float64
}

// DefaultPeriod is the monitor tick interval when none is configured.
const DefaultPeriod = 30 * time.Second

// DefaultScoreStep is the per-tick match-score increment for time-critical
// tiers.
const DefaultScoreStep = 2

// Monitor is the periodic task that refreshes market observations and runs
// the rate optimizer across all open opportunities. It has an explicit
// start/stop lifecycle, and Tick is exported so tests single-step it without
// a live timer.
type Monitor struct {
	store    *Store
	registry *Registry
	source   DataSource
	opts     MonitorOptions
	logger   *slog.Logger
	ticks    *metrics.Counter
	adjusted *metrics.Counter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a market monitor.
func NewMonitor(store *Store, registry *Registry, source DataSource, opts MonitorOptions, logger *slog.Logger, reg *metrics.Registry) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.ScoreStep <= 0 {
		opts.ScoreStep = DefaultScoreStep
	}
	if reg == nil {
		reg = metrics.New()
	}
	return &Monitor{
		store:    store,
		registry: registry,
		source:   source,
		opts:     opts,
		logger:   logger,
		ticks:    reg.Counter("market_monitor_ticks_total", "Completed market monitor ticks."),
		adjusted: reg.Counter("market_rate_adjustments_total", "Opportunities whose rate changed during a tick."),
	}
}

// Start launches the tick loop. Calling Start on a running monitor is a
// no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.opts.Period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Tick(ctx)
			}
		}
	}()
	m.logger.Info("market monitor started", "period", m.opts.Period)
}

// Stop halts the tick loop and waits for the in-flight tick to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("market monitor stopped")
}

// Tick runs one monitor pass: refresh the market observation, bump the match
// score for time-critical loads, and apply the matched strategy's rate
// policy. Each record is updated atomically through the store; readers see
// either the pre-tick or post-tick version of any record.
func (m *Monitor) Tick(ctx context.Context) {
	adjusted := 0
	for _, id := range m.store.IDs() {
		if ctx.Err() != nil {
			return
		}
		m.store.Update(id, func(o *domain.LoadOpportunity) {
			before := o.Rate

			o.SetMarketRate(m.source.ObserveRate(*o))
			o.Competitors = m.source.ObserveCompetitors(*o)

			if o.Urgency.TimeCritical() {
				o.MatchScore += m.opts.ScoreStep
				if o.MatchScore > 100 {
					o.MatchScore = 100
				}
			}

			// No strategy match means the rate is left alone.
			if s, ok := m.registry.Select(*o); ok {
				ApplyStrategy(o, s)
			}
			if o.Rate != before {
				adjusted++
			}
		})
	}
	m.ticks.Inc()
	m.adjusted.Add(int64(adjusted))
	m.logger.Debug("market tick", "opportunities", m.store.Len(), "adjusted", adjusted)
}
