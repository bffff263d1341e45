// Package dispatch wires the matching, market, and routing engines into one
// service with a single start/stop lifecycle.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/haulcore/dispatch-engine/engine/catalog"
	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/engine/ingest"
	"github.com/haulcore/dispatch-engine/engine/market"
	"github.com/haulcore/dispatch-engine/engine/routing"
	"github.com/haulcore/dispatch-engine/pkg/metrics"
)

// ErrUnknownLoad is returned when an optimization names a load that is not
// in the opportunity store.
var ErrUnknownLoad = errors.New("unknown load")

// Config assembles a service. Zero-value fields fall back to defaults; a nil
// NATS connection disables ingestion subscriptions and the advisory client.
type Config struct {
	NATS        *nats.Conn
	Logger      *slog.Logger
	Metrics     *metrics.Registry
	Monitor     market.MonitorOptions
	Routing     routing.Options
	MarketSeed  int64
	Source      market.DataSource
	Improvement routing.ImprovementSource
	Advisor     routing.Advisor
}

// Service is the dispatch engine facade.
type Service struct {
	Catalog  *catalog.Catalog
	Store    *market.Store
	Registry *market.Registry
	Metrics  *metrics.Registry

	monitor   *market.Monitor
	ingestor  *ingest.Ingestor
	optimizer *routing.Optimizer
	finder    *routing.Finder
	logger    *slog.Logger
}

// New builds a fully wired service with the default catalog and strategies
// seeded.
func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Source == nil {
		seed := cfg.MarketSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		cfg.Source = market.NewSimSource(seed, market.DefaultSimOptions)
	}
	if cfg.Routing.MilesPerGallon <= 0 {
		cfg.Routing = routing.DefaultOptions()
	}
	if cfg.Advisor == nil && cfg.NATS != nil {
		cfg.Advisor = routing.NewNATSAdvisor(cfg.NATS, cfg.Routing.AdvisorTimeout, cfg.Logger)
	}

	cat := catalog.New()
	catalog.Seed(cat)
	store := market.NewStore()
	registry := market.NewRegistry()
	market.SeedStrategies(registry)

	svc := &Service{
		Catalog:   cat,
		Store:     store,
		Registry:  registry,
		Metrics:   cfg.Metrics,
		monitor:   market.NewMonitor(store, registry, cfg.Source, cfg.Monitor, cfg.Logger, cfg.Metrics),
		optimizer: routing.NewOptimizer(cat, store, cfg.Advisor, cfg.Improvement, cfg.Routing, cfg.Logger, cfg.Metrics),
		finder:    routing.NewFinder(store, cat),
		logger:    cfg.Logger,
	}
	if cfg.NATS != nil {
		svc.ingestor = ingest.New(cfg.NATS, store, cfg.Logger, cfg.Metrics)
	}
	return svc
}

// Start launches the market monitor and, when NATS is configured, the
// ingestion subscriptions.
func (s *Service) Start(ctx context.Context) error {
	if s.ingestor != nil {
		if err := s.ingestor.Start(ctx); err != nil {
			return fmt.Errorf("start ingestion: %w", err)
		}
	}
	s.monitor.Start(ctx)
	s.logger.Info("dispatch service started")
	return nil
}

// Stop halts background work. Safe to call without a prior Start.
func (s *Service) Stop() {
	s.monitor.Stop()
	if s.ingestor != nil {
		s.ingestor.Stop()
	}
	s.logger.Info("dispatch service stopped")
}

// AddOpportunity validates and stores a load directly, bypassing the wire.
func (s *Service) AddOpportunity(o domain.LoadOpportunity) error {
	return s.Store.Put(o)
}

// QueryOpportunities lists open loads matching the filter.
func (s *Service) QueryOpportunities(f market.Filter) []domain.LoadOpportunity {
	return s.Store.List(f)
}

// MarketReport generates the category report from the current snapshot.
func (s *Service) MarketReport() market.Report {
	return market.GenerateReport(s.Store, time.Now().UTC())
}

// Tick runs one market-monitor pass immediately.
func (s *Service) Tick(ctx context.Context) {
	s.monitor.Tick(ctx)
}

// OptimizeMultiLoad resolves the named loads and sequences them for the
// vehicle. An empty ID list is valid; an unknown ID is an error.
func (s *Service) OptimizeMultiLoad(ctx context.Context, loadIDs []string, vehicleID string) (*routing.OptimizationRecord, error) {
	loads := make([]domain.LoadOpportunity, 0, len(loadIDs))
	for _, id := range loadIDs {
		o, ok := s.Store.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLoad, id)
		}
		loads = append(loads, o)
	}
	return s.optimizer.OptimizeMultiLoad(ctx, loads, vehicleID)
}

// OptimizeFleet runs the fleet-wide optimization across the given vehicles.
func (s *Service) OptimizeFleet(ctx context.Context, vehicleIDs []string) (*routing.OptimizationRecord, error) {
	return s.optimizer.OptimizeFleet(ctx, vehicleIDs)
}

// FindBackhaul proposes return-leg loads for a completed route.
func (s *Service) FindBackhaul(route routing.RouteData, vehicleID string) []routing.BackhaulCandidate {
	return s.finder.FindBackhaul(route, vehicleID)
}
